package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/datajpa/internal/database/dbtest"
	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/persistence"
	teamModel "github.com/festy23/datajpa/internal/team/model"
)

func setupRepo(t *testing.T) (Repository, *persistence.Session) {
	t.Helper()
	db := dbtest.Open(t, &teamModel.Team{}, &memberModel.Member{})
	session := persistence.NewManager(db, nil, nil).Session()
	return New(session, zap.NewNop().Sugar()), session
}

func TestRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	team := teamModel.NewTeam("teamA")
	require.NoError(t, repo.Save(ctx, team))
	assert.NotZero(t, team.ID)
	assert.False(t, team.CreatedDate.IsZero())

	found, err := repo.FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Same(t, team, found)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	team, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, teamModel.ErrTeamNotFound)
	assert.Nil(t, team)
}

func TestRepository_Members(t *testing.T) {
	ctx := context.Background()
	repo, session := setupRepo(t)

	teamA := teamModel.NewTeam("teamA")
	teamB := teamModel.NewTeam("teamB")
	require.NoError(t, repo.Save(ctx, teamA))
	require.NoError(t, repo.Save(ctx, teamB))

	for _, spec := range []struct {
		name string
		team *teamModel.Team
	}{
		{"member2", teamA},
		{"member1", teamA},
		{"member3", teamB},
		{"loner", nil},
	} {
		m, err := memberModel.NewMemberInTeam(spec.name, 10, spec.team)
		require.NoError(t, err)
		require.NoError(t, persistence.Save(ctx, session, m))
	}

	members, err := repo.Members(ctx, teamA.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "member1", members[0].Username)
	assert.Equal(t, "member2", members[1].Username)

	empty, err := repo.Members(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, session := setupRepo(t)

	team := teamModel.NewTeam("teamA")
	require.NoError(t, repo.Save(ctx, team))

	t.Run("referenced team is not cascaded", func(t *testing.T) {
		m, err := memberModel.NewMemberInTeam("member1", 10, team)
		require.NoError(t, err)
		require.NoError(t, persistence.Save(ctx, session, m))

		err = repo.Delete(ctx, team)
		assert.ErrorIs(t, err, persistence.ErrConstraintViolation)

		m.LeaveTeam()
		require.NoError(t, persistence.Save(ctx, session, m))
	})

	t.Run("unreferenced team", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, team))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("unsaved team", func(t *testing.T) {
		err := repo.Delete(ctx, teamModel.NewTeam("ghost"))
		assert.ErrorIs(t, err, teamModel.ErrTeamNotFound)
	})
}
