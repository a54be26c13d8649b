package config

import "fmt"

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Audit holds auditing configuration.
	Audit AuditConfig
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
	// SeedMemberCount is the number of sample members created on startup (0 disables seeding).
	SeedMemberCount int
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		Server:          LoadServerConfigFromEnv(),
		Logger:          LoadLoggerConfigFromEnv(),
		Audit:           LoadAuditConfigFromEnv(),
		GinMode:         GetEnv("GIN_MODE", "release"),
		SeedMemberCount: GetEnvInt("SEED_MEMBER_COUNT", 0),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("audit config validation failed: %w", err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	if c.SeedMemberCount < 0 {
		return fmt.Errorf("invalid SEED_MEMBER_COUNT: %d (must be >= 0)", c.SeedMemberCount)
	}

	return nil
}
