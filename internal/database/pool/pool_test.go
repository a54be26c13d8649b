package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPresets(t *testing.T) {
	assert.Equal(t, Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}, Default())
	assert.Equal(t, Config{MaxOpenConns: 1, MaxIdleConns: 1}, SQLite())

	assert.NoError(t, Default().Validate())
	assert.NoError(t, SQLite().Validate())
}

func TestFromEnv(t *testing.T) {
	t.Run("no overrides", func(t *testing.T) {
		assert.Equal(t, Default(), FromEnv(Default()))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DB_MAX_OPEN_CONNS", "50")
		t.Setenv("DB_MAX_IDLE_CONNS", "10")
		t.Setenv("DB_CONN_MAX_LIFETIME", "1m")

		cfg := FromEnv(Default())
		assert.Equal(t, 50, cfg.MaxOpenConns)
		assert.Equal(t, 10, cfg.MaxIdleConns)
		assert.Equal(t, time.Minute, cfg.ConnMaxLifetime)
		assert.Equal(t, 10*time.Minute, cfg.ConnMaxIdleTime)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "idle equals open", cfg: Config{MaxOpenConns: 3, MaxIdleConns: 3}},
		{name: "no idle", cfg: Config{MaxOpenConns: 3}},
		{name: "zero open", cfg: Config{}, wantErr: "MaxOpenConns"},
		{name: "negative open", cfg: Config{MaxOpenConns: -1}, wantErr: "MaxOpenConns"},
		{name: "negative idle", cfg: Config{MaxOpenConns: 1, MaxIdleConns: -1}, wantErr: "non-negative"},
		{name: "idle above open", cfg: Config{MaxOpenConns: 2, MaxIdleConns: 3}, wantErr: "cannot be greater"},
		{name: "negative lifetime", cfg: Config{MaxOpenConns: 1, ConnMaxLifetime: -time.Second}, wantErr: "lifetimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("sets limits", func(t *testing.T) {
		db := openSQLite(t)
		require.NoError(t, Apply(db, Config{MaxOpenConns: 7, MaxIdleConns: 2}))

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
	})

	t.Run("invalid config leaves pool untouched", func(t *testing.T) {
		db := openSQLite(t)
		require.Error(t, Apply(db, Config{MaxOpenConns: 1, MaxIdleConns: 2}))

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Zero(t, sqlDB.Stats().MaxOpenConnections)
	})

	t.Run("closed connection still accepts limits", func(t *testing.T) {
		db := openSQLite(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		assert.NoError(t, Apply(db, SQLite()))
	})
}
