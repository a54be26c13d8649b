package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/datajpa/internal/database/dbtest"
	memberModel "github.com/festy23/datajpa/internal/member/model"
	"github.com/festy23/datajpa/internal/member/repository"
	"github.com/festy23/datajpa/internal/persistence"
	"github.com/festy23/datajpa/internal/persistence/query"
	teamModel "github.com/festy23/datajpa/internal/team/model"
)

// mockRepository stubs the methods the service calls. Any other method panics.
type mockRepository struct {
	mock.Mock
	repository.Repository
}

func (m *mockRepository) Save(ctx context.Context, member *memberModel.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*memberModel.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*memberModel.Member), args.Error(1)
}

func (m *mockRepository) FindPage(ctx context.Context, req query.PageRequest) (query.Page[*memberModel.Member], error) {
	args := m.Called(ctx, req)
	return args.Get(0).(query.Page[*memberModel.Member]), args.Error(1)
}

var _ repository.Repository = (*mockRepository)(nil)

func newManager(t *testing.T) *persistence.Manager {
	t.Helper()
	return persistence.NewManager(dbtest.Open(t, &teamModel.Team{}, &memberModel.Member{}), nil, nil)
}

func withMock(t *testing.T, repo *mockRepository) Service {
	t.Helper()
	factory := func(*persistence.Session) repository.Repository { return repo }
	return New(newManager(t), factory, zap.NewNop().Sugar())
}

func withDatabase(t *testing.T) (Service, *persistence.Manager) {
	t.Helper()
	manager := newManager(t)
	registry, err := repository.DefaultRegistry()
	require.NoError(t, err)
	return New(manager, repository.NewFactory(registry, zap.NewNop().Sugar()), zap.NewNop().Sugar()), manager
}

func TestService_GetUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", mock.Anything, int64(1)).Return(&memberModel.Member{ID: 1, Username: "member1"}, nil)

		username, err := withMock(t, repo).GetUsername(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "member1", username)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindByID", mock.Anything, int64(2)).Return(nil, memberModel.ErrMemberNotFound)

		username, err := withMock(t, repo).GetUsername(ctx, 2)
		assert.ErrorIs(t, err, memberModel.ErrMemberNotFound)
		assert.Empty(t, username)
	})
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts numbered members", func(t *testing.T) {
		svc, manager := withDatabase(t)
		require.NoError(t, svc.Seed(ctx, 100))

		var count int64
		require.NoError(t, manager.DB().Model(&memberModel.Member{}).Count(&count).Error)
		assert.Equal(t, int64(100), count)

		var last memberModel.Member
		require.NoError(t, manager.DB().Where("username = ?", "user99").Take(&last).Error)
		assert.Equal(t, 99, last.Age)
		assert.Equal(t, "system", last.CreatedBy)
	})

	t.Run("zero is a no-op", func(t *testing.T) {
		repo := new(mockRepository)
		require.NoError(t, withMock(t, repo).Seed(ctx, 0))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("failure rolls back", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		err := withMock(t, repo).Seed(ctx, 5)
		assert.ErrorContains(t, err, "failed to seed members")
		repo.AssertNumberOfCalls(t, "Save", 2)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps members to dtos", func(t *testing.T) {
		svc, manager := withDatabase(t)
		err := manager.InTransaction(ctx, func(s *persistence.Session) error {
			team := teamModel.NewTeam("teamA")
			if err := persistence.Save(ctx, s, team); err != nil {
				return err
			}
			m, err := memberModel.NewMemberInTeam("member1", 10, team)
			if err != nil {
				return err
			}
			if err := persistence.Save(ctx, s, m); err != nil {
				return err
			}
			return persistence.Save(ctx, s, memberModel.NewMemberWithAge("member2", 20))
		})
		require.NoError(t, err)

		req, err := query.Of(0, 12, query.By(query.Desc("username")))
		require.NoError(t, err)
		page, err := svc.List(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, []memberModel.MemberDto{
			{ID: 2, Username: "member2"},
			{ID: 1, Username: "member1", TeamName: "teamA"},
		}, page.Content)
		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("FindPage", mock.Anything, mock.Anything).
			Return(query.Page[*memberModel.Member]{}, query.ErrUnknownField)

		_, err := withMock(t, repo).List(ctx, query.PageRequest{Size: 1})
		assert.ErrorIs(t, err, query.ErrUnknownField)
	})
}
