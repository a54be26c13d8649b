package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teamModel "github.com/festy23/datajpa/internal/team/model"
)

func TestNewMember(t *testing.T) {
	m := NewMember("AAA")
	assert.Equal(t, "AAA", m.Username)
	assert.Zero(t, m.Age)
	assert.True(t, m.IsNew())
	assert.False(t, m.HasTeam())

	aged := NewMemberWithAge("BBB", 20)
	assert.Equal(t, 20, aged.Age)
}

func TestNewMemberInTeam(t *testing.T) {
	t.Run("saved team", func(t *testing.T) {
		team := &teamModel.Team{ID: 5, Name: "teamA"}
		m, err := NewMemberInTeam("AAA", 10, team)
		require.NoError(t, err)
		require.NotNil(t, m.TeamID)
		assert.Equal(t, int64(5), *m.TeamID)
		assert.Same(t, team, m.Team)
	})

	t.Run("no team", func(t *testing.T) {
		m, err := NewMemberInTeam("AAA", 10, nil)
		require.NoError(t, err)
		assert.False(t, m.HasTeam())
	})

	t.Run("unsaved team", func(t *testing.T) {
		m, err := NewMemberInTeam("AAA", 10, teamModel.NewTeam("teamA"))
		assert.ErrorIs(t, err, ErrTeamNotSaved)
		assert.Nil(t, m)
	})
}

func TestMember_ChangeTeam(t *testing.T) {
	teamA := &teamModel.Team{ID: 1, Name: "teamA"}
	teamB := &teamModel.Team{ID: 2, Name: "teamB"}
	m := NewMember("AAA")

	require.NoError(t, m.ChangeTeam(teamA))
	require.NoError(t, m.ChangeTeam(teamB))
	assert.Equal(t, int64(2), *m.TeamID)
	assert.Same(t, teamB, m.Team)

	// The stored key is a copy, so later changes to the team do not leak in.
	teamB.ID = 99
	assert.Equal(t, int64(2), *m.TeamID)

	assert.ErrorIs(t, m.ChangeTeam(nil), ErrTeamRequired)

	m.LeaveTeam()
	assert.Nil(t, m.TeamID)
	assert.Nil(t, m.Team)
}

func TestMember_ChangeUsername(t *testing.T) {
	m := NewMember("AAA")
	m.ChangeUsername("BBB")
	assert.Equal(t, "BBB", m.Username)
}

func TestNewMemberDto(t *testing.T) {
	withTeam := &Member{ID: 1, Username: "AAA", Team: &teamModel.Team{ID: 2, Name: "teamA"}}
	assert.Equal(t, MemberDto{ID: 1, Username: "AAA", TeamName: "teamA"}, NewMemberDto(withTeam))

	without := &Member{ID: 3, Username: "BBB"}
	assert.Equal(t, MemberDto{ID: 3, Username: "BBB"}, NewMemberDto(without))
}

func TestMemberDto_JSON(t *testing.T) {
	data, err := json.Marshal(MemberDto{ID: 1, Username: "AAA", TeamName: "teamA"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"username":"AAA","teamName":"teamA"}`, string(data))
}
