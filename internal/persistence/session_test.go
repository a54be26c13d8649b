package persistence

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/datajpa/internal/audit"
)

func TestSession_IdentityMap(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()

	err := m.InTransaction(ctx, func(s *Session) error {
		saved := &player{Username: "AAA", Age: 10}
		require.NoError(t, Save(ctx, s, saved))
		assert.True(t, s.Contains(saved))

		found, err := Find[player](ctx, s, saved.ID)
		require.NoError(t, err)
		assert.Same(t, saved, found)

		again, err := Find[player](ctx, s, saved.ID)
		require.NoError(t, err)
		assert.Same(t, found, again)

		all, err := FindAll[player](ctx, s, Spec{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Same(t, saved, all[0])
		return nil
	})
	require.NoError(t, err)
}

func TestSession_ClearAndDetach(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()
	s := m.Session()

	p := &player{Username: "AAA", Age: 10}
	require.NoError(t, Save(ctx, s, p))
	assert.Equal(t, 1, s.Size())

	s.Detach(p)
	assert.False(t, s.Contains(p))

	found, err := Find[player](ctx, s, p.ID)
	require.NoError(t, err)
	assert.NotSame(t, p, found)
	assert.Equal(t, p.Username, found.Username)

	s.Clear()
	assert.Zero(t, s.Size())
	assert.False(t, s.Contains(found))
}

func TestSession_NewSessionsDoNotShareInstances(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()

	p := &player{Username: "AAA"}
	require.NoError(t, Save(ctx, m.Session(), p))

	found, err := Find[player](ctx, m.Session(), p.ID)
	require.NoError(t, err)
	assert.NotSame(t, p, found)
}

func TestManager_InTransactionRollsBack(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()
	boom := errors.New("boom")

	err := m.InTransaction(ctx, func(s *Session) error {
		require.NoError(t, Save(ctx, s, &player{Username: "AAA"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := Count[player](ctx, m.Session(), Spec{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSave_Auditing(t *testing.T) {
	m, _ := setup(t)
	s := m.Session()

	createCtx := audit.WithActor(testContext(), "alice")
	p := &player{Username: "AAA", Age: 10}
	require.NoError(t, Save(createCtx, s, p))

	assert.Equal(t, testEpoch, p.CreatedDate)
	assert.Equal(t, testEpoch, p.LastModifiedDate)
	assert.Equal(t, "alice", p.CreatedBy)
	assert.Equal(t, "alice", p.LastModifiedBy)

	later := testEpoch.Add(time.Hour)
	updateCtx := audit.WithActor(audit.WithClock(testContext(), audit.FixedClock(later)), "bob")
	p.Username = "BBB"
	// A stale creation stamp in memory must not reach the row.
	p.CreatedDate = later
	p.CreatedBy = "mallory"
	require.NoError(t, Save(updateCtx, s, p))

	s.Clear()
	reloaded, err := Find[player](testContext(), s, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "BBB", reloaded.Username)
	assert.True(t, testEpoch.Equal(reloaded.CreatedDate))
	assert.Equal(t, "alice", reloaded.CreatedBy)
	assert.True(t, later.Equal(reloaded.LastModifiedDate))
	assert.Equal(t, "bob", reloaded.LastModifiedBy)
}

func TestSave_DefaultActor(t *testing.T) {
	_, db := setup(t)
	m := NewManager(db, nil, nil)

	p := &player{Username: "AAA"}
	require.NoError(t, Save(testContext(), m.Session(), p))
	assert.Equal(t, audit.SystemActor, p.CreatedBy)
}

func TestSave_ClientAssignedKey(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()
	s := m.Session()

	tk := &ticket{ID: "A"}
	assert.True(t, tk.IsNew())
	require.NoError(t, Save(ctx, s, tk))
	assert.False(t, tk.IsNew())
	assert.Equal(t, testEpoch, tk.CreatedDate)

	// Saving again updates instead of inserting a duplicate.
	require.NoError(t, Save(ctx, s, tk))
	count, err := Count[ticket](ctx, s, Spec{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	dup := &ticket{ID: "A"}
	err = Save(ctx, m.Session(), dup)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestSave_FailedInsertRestoresEntity(t *testing.T) {
	m, db := setup(t)
	ctx := testContext()
	s := m.Session()

	tk := &ticket{}
	require.ErrorIs(t, Save(ctx, s, tk), ErrConstraintViolation)
	assert.True(t, tk.IsNew())
	assert.True(t, tk.CreatedDate.IsZero())
	assert.False(t, s.Contains(tk))

	tk.ID = "B"
	require.NoError(t, Save(ctx, s, tk))

	var rows int64
	require.NoError(t, db.Model(&ticket{}).Where("id = ?", "B").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	missing := int64(999)
	p := &player{Username: "AAA", SquadID: &missing}
	require.ErrorIs(t, Save(ctx, s, p), ErrConstraintViolation)
	assert.Zero(t, p.ID)
	assert.Empty(t, p.CreatedBy)
}

func TestSave_UpdateOfMissingRowInserts(t *testing.T) {
	m, db := setup(t)
	ctx := testContext()
	s := m.Session()

	tk := &ticket{ID: "C", CreatedDate: testEpoch.Add(-time.Hour)}
	require.False(t, tk.IsNew())
	require.NoError(t, Save(ctx, s, tk))
	assert.True(t, s.Contains(tk))

	var rows int64
	require.NoError(t, db.Model(&ticket{}).Where("id = ?", "C").Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	p := &player{Username: "AAA"}
	require.NoError(t, Save(ctx, s, p))
	require.NoError(t, db.Exec("DELETE FROM players WHERE id = ?", p.ID).Error)

	p.Age = 30
	require.NoError(t, Save(ctx, s, p))
	found, err := Find[player](ctx, m.Session(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, found.Age)
	assert.Equal(t, "tester", found.CreatedBy)
}

func TestSave_ConstraintViolations(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()
	s := m.Session()

	t.Run("foreign key", func(t *testing.T) {
		missing := int64(999)
		err := Save(ctx, s, &player{Username: "AAA", SquadID: &missing})
		assert.ErrorIs(t, err, ErrConstraintViolation)
	})

	t.Run("validation", func(t *testing.T) {
		err := Save(ctx, s, &squad{Name: "a name that is much too long"})
		assert.ErrorIs(t, err, ErrConstraintViolation)

		err = Save(ctx, s, &ticket{})
		assert.ErrorIs(t, err, ErrConstraintViolation)
	})

	t.Run("nil entity", func(t *testing.T) {
		err := Save[player](ctx, s, nil)
		assert.ErrorIs(t, err, ErrConstraintViolation)
	})
}

func TestSave_DoesNotCascade(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()
	s := m.Session()

	p := &player{Username: "AAA", Squad: &squad{Name: "unsaved"}}
	require.NoError(t, Save(ctx, s, p))

	count, err := Count[squad](ctx, s, Spec{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete_RoundTrip(t *testing.T) {
	m, _ := setup(t)
	ctx := testContext()
	s := m.Session()

	p1 := &player{Username: "AAA"}
	p2 := &player{Username: "BBB"}
	require.NoError(t, Save(ctx, s, p1))
	require.NoError(t, Save(ctx, s, p2))

	count, err := Count[player](ctx, s, Spec{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, Delete(ctx, s, p1))
	require.NoError(t, Delete(ctx, s, p2))
	assert.False(t, s.Contains(p1))

	count, err = Count[player](ctx, s, Spec{})
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = Find[player](ctx, s, p1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = Delete(ctx, s, &player{})
	assert.ErrorIs(t, err, ErrNotFound)

	err = Delete(ctx, s, p1)
	assert.ErrorIs(t, err, ErrNotFound, "row already deleted")
}

func TestFind_NotFound(t *testing.T) {
	m, _ := setup(t)

	p, err := Find[player](testContext(), m.Session(), int64(42))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, p)

	tk, err := Find[ticket](testContext(), m.Session(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, tk)
}
