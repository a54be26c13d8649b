// Package config loads the database connection settings.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	appConfig "github.com/festy23/datajpa/internal/config"
	"github.com/festy23/datajpa/pkg/retry"
)

const (
	// DriverPostgres selects the PostgreSQL driver.
	DriverPostgres = "postgres"
	// DriverSQLite selects the SQLite driver (local runs and tests).
	DriverSQLite = "sqlite"
)

var logLevels = []string{"silent", "error", "warn", "info"}

// Config holds database connection configuration.
type Config struct {
	Driver     string
	Host       string
	User       string
	Password   string
	DBName     string
	Port       string
	SSLMode    string
	TimeZone   string
	SQLitePath string
	// LogLevel is the SQL log level (silent, error, warn, info).
	LogLevel string
	// SlowThreshold marks queries slower than this as slow in SQL logs.
	SlowThreshold time.Duration
}

// GetEnv reads an environment variable with a default fallback.
func GetEnv(key, defaultValue string) string {
	return appConfig.GetEnv(key, defaultValue)
}

// LoadConfigFromEnv loads database configuration from DB_* variables.
func LoadConfigFromEnv() Config {
	return Config{
		Driver:        GetEnv("DB_DRIVER", DriverPostgres),
		Host:          GetEnv("DB_HOST", "localhost"),
		User:          GetEnv("DB_USER", "postgres"),
		Password:      GetEnv("DB_PASSWORD", "postgres"),
		DBName:        GetEnv("DB_NAME", "datajpa"),
		Port:          GetEnv("DB_PORT", "5432"),
		SSLMode:       GetEnv("DB_SSLMODE", "disable"),
		TimeZone:      GetEnv("DB_TIMEZONE", "UTC"),
		SQLitePath:    GetEnv("DB_SQLITE_PATH", "datajpa.db"),
		LogLevel:      GetEnv("DB_LOG_LEVEL", "warn"),
		SlowThreshold: appConfig.GetEnvDuration("DB_SLOW_THRESHOLD", 200*time.Millisecond),
	}
}

// LoadRetryConfigFromEnv loads the connect retry policy from DB_RETRY_* variables.
func LoadRetryConfigFromEnv() retry.Config {
	cfg := retry.ConnectConfig()
	cfg.Attempts = appConfig.GetEnvInt("DB_RETRY_MAX_ATTEMPTS", cfg.Attempts)
	cfg.Backoff.Initial = appConfig.GetEnvDuration("DB_RETRY_INITIAL_DELAY", cfg.Backoff.Initial)
	cfg.Backoff.Max = appConfig.GetEnvDuration("DB_RETRY_MAX_DELAY", cfg.Backoff.Max)
	cfg.Backoff.Multiplier = appConfig.GetEnvFloat("DB_RETRY_MULTIPLIER", cfg.Backoff.Multiplier)
	return cfg
}

// BuildDSN constructs the PostgreSQL key/value DSN.
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
}

// Redacted returns a copy of c with the password masked.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "***"
	}
	return c
}

// Validate validates database configuration.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Host == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be: postgres, sqlite)", c.Driver)
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid DB_LOG_LEVEL: %s (must be one of %v)", c.LogLevel, logLevels)
	}
	return nil
}

// connectError carries a message with the password removed while keeping
// the driver error reachable through errors.Is and errors.As.
type connectError struct {
	msg string
	err error
}

func (e *connectError) Error() string { return e.msg }
func (e *connectError) Unwrap() error { return e.err }

// SanitizeError prefixes a connect error and strips the password from its message.
func SanitizeError(err error, cfg Config) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if cfg.Password != "" {
		msg = strings.ReplaceAll(msg, BuildDSN(cfg), BuildDSN(cfg.Redacted()))
		msg = strings.ReplaceAll(msg, cfg.Password, "***")
	}
	return &connectError{msg: "failed to connect to database: " + msg, err: err}
}
