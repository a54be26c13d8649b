// Package repository provides data access layer for team module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/persistence/query"
	teamModel "github.com/festy23/datajpa/internal/team/model"
)

// Repository defines the interface for team data access operations.
type Repository interface {
	// Save inserts or updates a team.
	Save(ctx context.Context, team *teamModel.Team) error

	// FindByID finds team by id.
	FindByID(ctx context.Context, id int64) (*teamModel.Team, error)

	// Members returns the members referencing the team, ordered by username.
	Members(ctx context.Context, teamID int64) ([]*memberModel.Member, error)

	// Count returns the number of teams.
	Count(ctx context.Context) (int64, error)

	// Delete removes a team. Its members are not touched.
	Delete(ctx context.Context, team *teamModel.Team) error
}

// Factory binds a Repository to a session.
type Factory func(s *persistence.Session) Repository

type repository struct {
	session *persistence.Session
	logger  *zap.SugaredLogger
}

// New creates a new team repository instance.
func New(session *persistence.Session, logger *zap.SugaredLogger) Repository {
	return &repository{session: session, logger: logger}
}

// NewFactory returns a Factory creating repositories that log to logger.
func NewFactory(logger *zap.SugaredLogger) Factory {
	return func(s *persistence.Session) Repository {
		return New(s, logger)
	}
}

// Save inserts or updates a team.
func (r *repository) Save(ctx context.Context, team *teamModel.Team) error {
	r.logger.Debugw("Save called", "team_id", team.ID, "name", team.Name)

	if err := persistence.Save(ctx, r.session, team); err != nil {
		r.logger.Errorw("Save database error", "name", team.Name, "error", err)
		return err
	}

	r.logger.Infow("Save completed", "team_id", team.ID)
	return nil
}

// FindByID finds team by id.
func (r *repository) FindByID(ctx context.Context, id int64) (*teamModel.Team, error) {
	r.logger.Debugw("FindByID called", "team_id", id)

	team, err := persistence.Find[teamModel.Team](ctx, r.session, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			r.logger.Debugw("FindByID team not found", "team_id", id)
			return nil, teamModel.ErrTeamNotFound
		}
		r.logger.Errorw("FindByID database error", "team_id", id, "error", err)
		return nil, err
	}

	return team, nil
}

// Members returns the members referencing the team, ordered by username.
func (r *repository) Members(ctx context.Context, teamID int64) ([]*memberModel.Member, error) {
	r.logger.Debugw("Members called", "team_id", teamID)

	members, err := persistence.FindAll[memberModel.Member](ctx, r.session, persistence.Spec{
		Where: query.Where("team_id").Eq(teamID),
		Sort:  query.By(query.Asc("username")),
	})
	if err != nil {
		r.logger.Errorw("Members database error", "team_id", teamID, "error", err)
		return nil, err
	}

	r.logger.Debugw("Members completed", "team_id", teamID, "count", len(members))
	return members, nil
}

// Count returns the number of teams.
func (r *repository) Count(ctx context.Context) (int64, error) {
	count, err := persistence.Count[teamModel.Team](ctx, r.session, persistence.Spec{})
	if err != nil {
		r.logger.Errorw("Count database error", "error", err)
		return 0, err
	}
	return count, nil
}

// Delete removes a team. Its members are not touched.
func (r *repository) Delete(ctx context.Context, team *teamModel.Team) error {
	r.logger.Infow("Delete called", "team_id", team.ID)

	if err := persistence.Delete(ctx, r.session, team); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return teamModel.ErrTeamNotFound
		}
		r.logger.Errorw("Delete database error", "team_id", team.ID, "error", err)
		return err
	}
	return nil
}
