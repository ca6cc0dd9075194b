package config

import "time"

// SessionConfig controls how visitor sessions are kept and restored.
type SessionConfig struct {
	// TTL bounds a persisted login when the credential carries no readable expiry.
	TTL time.Duration `env:"TTL" envDefault:"24h"`

	// ResolveWait is how long a request waits for a restoring session before
	// the portal answers with a loading response instead.
	ResolveWait time.Duration `env:"RESOLVE_WAIT" envDefault:"250ms"`

	// IdleTTL evicts in-memory client sessions not seen for this long.
	// Persisted logins survive eviction and are restored on the next request.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"30m"`

	// RestoreTimeout bounds a single restoration read from Redis.
	RestoreTimeout time.Duration `env:"RESTORE_TIMEOUT" envDefault:"3s"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
	if s.ResolveWait < 0 {
		s.ResolveWait = 0
	}
	if s.ResolveWait > 5*time.Second {
		s.ResolveWait = 5 * time.Second
	}
	if s.IdleTTL < time.Minute {
		s.IdleTTL = time.Minute
	}
	if s.RestoreTimeout <= 0 {
		s.RestoreTimeout = 3 * time.Second
	}
}
