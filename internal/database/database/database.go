// Package database provides database connection management for PostgreSQL and SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/database/config"
	"github.com/festy23/datajpa/internal/database/gormlog"
	"github.com/festy23/datajpa/internal/database/pool"
	"github.com/festy23/datajpa/pkg/retry"
)

// New creates a new database connection using environment variables.
func New(logger *zap.SugaredLogger) (*gorm.DB, error) {
	cfg := config.LoadConfigFromEnv()
	return NewWithConfig(cfg, logger)
}

// NewWithConfig creates a new database connection with custom configuration.
func NewWithConfig(cfg config.Config, logger *zap.SugaredLogger) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	retryCfg := config.LoadRetryConfigFromEnv()
	retryCfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warnw("database connect failed, retrying",
			"driver", cfg.Driver,
			"attempt", attempt,
			"wait", wait,
			"error", config.SanitizeError(err, cfg),
		)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gormCfg := GormConfig(cfg, logger)
	dialector := Dialector(cfg)

	db, err := retry.DoWithResult(ctx, retryCfg, func(context.Context) (*gorm.DB, error) {
		return gorm.Open(dialector, gormCfg)
	})
	if err != nil {
		return nil, config.SanitizeError(err, cfg)
	}

	poolCfg := pool.FromEnv(pool.Default())
	if cfg.Driver == config.DriverSQLite {
		poolCfg = pool.SQLite()
	}
	if err := pool.Apply(db, poolCfg); err != nil {
		return nil, fmt.Errorf("failed to setup connection pool: %w", err)
	}

	return db, nil
}

// Dialector returns the gorm dialector for the configured driver.
func Dialector(cfg config.Config) gorm.Dialector {
	if cfg.Driver == config.DriverSQLite {
		return sqlite.Open(cfg.SQLitePath)
	}
	return postgres.Open(config.BuildDSN(cfg))
}

// GormConfig returns the gorm configuration shared by every connection.
// Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func GormConfig(cfg config.Config, logger *zap.SugaredLogger) *gorm.Config {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &gorm.Config{
		Logger:         gormlog.New(logger, cfg.LogLevel, cfg.SlowThreshold),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HealthCheck verifies database connection availability.
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close gracefully closes database connection.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// GetStats returns database connection pool statistics.
func GetStats(db *gorm.DB) (*sql.DBStats, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return &stats, nil
}
