// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/database/config"
	"github.com/festy23/datajpa/internal/database/database"
)

// Open returns an in-memory SQLite database with foreign keys enforced and
// models auto-migrated. It is closed when the test ends.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	cfg := config.Config{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:?_foreign_keys=1",
		LogLevel:   "warn",
	}
	db, err := database.NewWithConfig(cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return db
}

// QueryCounter counts SELECT statements issued through a gorm handle.
type QueryCounter struct {
	n atomic.Int64
}

// CountQueries starts counting queries on db. Call it once per handle.
func CountQueries(t testing.TB, db *gorm.DB) *QueryCounter {
	t.Helper()
	c := &QueryCounter{}
	err := db.Callback().Query().After("gorm:query").Register("dbtest:count_queries", func(*gorm.DB) {
		c.n.Add(1)
	})
	require.NoError(t, err)
	return c
}

// Count returns the number of queries since the last Reset.
func (c *QueryCounter) Count() int64 {
	return c.n.Load()
}

// Reset sets the count to zero.
func (c *QueryCounter) Reset() {
	c.n.Store(0)
}
