package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/audit"
	"github.com/festy23/datajpa/internal/database/dbtest"
)

type squad struct {
	ID   int64
	Name string `gorm:"not null" validate:"max=20"`
	audit.BaseEntity
}

type player struct {
	ID       int64
	Username string `gorm:"not null;index"`
	Age      int    `gorm:"not null;default:0"`
	SquadID  *int64
	Squad    *squad `gorm:"foreignKey:SquadID"`
	audit.BaseEntity
}

func (p *player) IsNew() bool { return p.ID == 0 }

type ticket struct {
	ID          string    `gorm:"primaryKey" validate:"required"`
	CreatedDate time.Time `gorm:"not null;<-:create"`
}

func (t *ticket) IsNew() bool { return t.CreatedDate.IsZero() }

func (t *ticket) StampCreated(at time.Time) { t.CreatedDate = at }

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Manager, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t, &squad{}, &player{}, &ticket{})
	stamper := audit.NewStamper(audit.ContextAuditor(audit.FixedAuditor("tester")))
	return NewManager(db, stamper, zaptest.NewLogger(t).Sugar()), db
}

func testContext() context.Context {
	return audit.WithClock(context.Background(), audit.FixedClock(testEpoch))
}

func seedPlayers(t *testing.T, m *Manager, ages map[string]int) {
	t.Helper()
	ctx := testContext()
	s := m.Session()
	for name, age := range ages {
		require.NoError(t, Save(ctx, s, &player{Username: name, Age: age}))
	}
}
