// Package model provides the Member entity, its projections and errors.
package model

import (
	"github.com/festy23/datajpa/internal/audit"
	teamModel "github.com/festy23/datajpa/internal/team/model"
)

// Member belongs to at most one team. Only the member side stores the
// relationship; a team's members are found by querying team_id.
type Member struct {
	ID       int64           `gorm:"primaryKey;column:id" json:"id"`
	Username string          `gorm:"column:username;type:varchar(255);not null;index" json:"username" validate:"max=255"`
	Age      int             `gorm:"column:age;not null;default:0" json:"age" validate:"gte=0"`
	TeamID   *int64          `gorm:"column:team_id;index" json:"teamId,omitempty"`
	Team     *teamModel.Team `gorm:"foreignKey:TeamID" json:"-"`
	audit.BaseEntity
}

// TableName specifies the table name for GORM.
func (Member) TableName() string {
	return "members"
}

// NewMember creates an unsaved member of age 0.
func NewMember(username string) *Member {
	return &Member{Username: username}
}

// NewMemberWithAge creates an unsaved member.
func NewMemberWithAge(username string, age int) *Member {
	return &Member{Username: username, Age: age}
}

// NewMemberInTeam creates an unsaved member assigned to a saved team.
// A nil team leaves the member without one.
func NewMemberInTeam(username string, age int, team *teamModel.Team) (*Member, error) {
	m := NewMemberWithAge(username, age)
	if team == nil {
		return m, nil
	}
	if err := m.ChangeTeam(team); err != nil {
		return nil, err
	}
	return m, nil
}

// IsNew reports whether the member has not been saved yet.
func (m *Member) IsNew() bool {
	return m.ID == 0
}

// ChangeUsername renames the member.
func (m *Member) ChangeUsername(username string) {
	m.Username = username
}

// ChangeTeam moves the member to team, which must already be saved.
func (m *Member) ChangeTeam(team *teamModel.Team) error {
	if team == nil {
		return ErrTeamRequired
	}
	if team.IsNew() {
		return ErrTeamNotSaved
	}
	id := team.ID
	m.TeamID = &id
	m.Team = team
	return nil
}

// LeaveTeam removes the member from its team.
func (m *Member) LeaveTeam() {
	m.TeamID = nil
	m.Team = nil
}

// HasTeam reports whether the member references a team.
func (m *Member) HasTeam() bool {
	return m.TeamID != nil
}
