// Package model provides the Team entity and its errors.
package model

import (
	"github.com/festy23/datajpa/internal/audit"
)

// Team groups members. Members reference their team; the team keeps no
// in-memory member list and its members are looked up by foreign key.
type Team struct {
	ID   int64  `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"column:name;type:varchar(255);not null" json:"name" validate:"required,max=255"`
	audit.BaseEntity
}

// TableName specifies the table name for GORM.
func (Team) TableName() string {
	return "teams"
}

// NewTeam creates an unsaved team.
func NewTeam(name string) *Team {
	return &Team{Name: name}
}

// IsNew reports whether the team has not been saved yet.
func (t *Team) IsNew() bool {
	return t.ID == 0
}

// Rename changes the team name.
func (t *Team) Rename(name string) {
	t.Name = name
}
