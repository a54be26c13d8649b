package config

import (
	"fmt"
	"strings"
)

// AuditConfig holds auditing configuration.
type AuditConfig struct {
	// ActorHeader is the HTTP header carrying the current actor.
	ActorHeader string
	// DefaultActor is used when a request carries no actor.
	// Empty means a random UUID is generated for every write.
	DefaultActor string
}

// LoadAuditConfigFromEnv loads auditing configuration from environment variables.
func LoadAuditConfigFromEnv() AuditConfig {
	return AuditConfig{
		ActorHeader:  GetEnv("AUDIT_ACTOR_HEADER", "X-Actor"),
		DefaultActor: GetEnv("AUDIT_DEFAULT_ACTOR", ""),
	}
}

// Validate validates auditing configuration.
func (c AuditConfig) Validate() error {
	if c.ActorHeader == "" {
		return fmt.Errorf("ActorHeader must not be empty")
	}
	if strings.ContainsAny(c.ActorHeader, " :\t\r\n") {
		return fmt.Errorf("invalid ActorHeader: %s", c.ActorHeader)
	}
	return nil
}
