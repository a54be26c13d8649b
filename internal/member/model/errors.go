package model

import "errors"

var (
	// ErrMemberNotFound indicates that the requested member does not exist.
	ErrMemberNotFound = errors.New("member not found")
	// ErrTeamRequired indicates a team change without a team.
	ErrTeamRequired = errors.New("team is required")
	// ErrTeamNotSaved indicates a reference to a team that has no identity yet.
	ErrTeamNotSaved = errors.New("team must be saved before members can join it")
)
