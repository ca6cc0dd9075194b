package config

import (
	"strings"
	"time"
)

// DBConfig contains PostgreSQL configuration for the booking ledger.
type DBConfig struct {
	// Enabled turns on the booking ledger. The portal runs without it.
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"portal"`
	Password string `env:"PASSWORD" envDefault:"portal"`
	Name     string `env:"NAME"     envDefault:"portal"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`

	// Required makes an unreachable ledger fatal at startup instead of
	// running bookings without a durable record.
	Required bool `env:"REQUIRED" envDefault:"false"`
	// ConnectAttempts and ConnectBackoff bound the startup retries; the
	// backoff doubles after each failed attempt.
	ConnectAttempts int           `env:"CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectBackoff  time.Duration `env:"CONNECT_BACKOFF"  envDefault:"1s"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"   envDefault:"10"`

	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize applies guardrails to ledger connection settings.
func (c *DBConfig) Sanitize() {
	c.SSLMode = strings.TrimSpace(c.SSLMode)
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.ConnectAttempts < 1 {
		c.ConnectAttempts = 1
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = time.Second
	}
	if c.MaxOpenConns < 1 {
		c.MaxOpenConns = 10
	}
}

// RedisConfig selects how the portal reaches Redis, which holds sessions,
// booking slots and the catalog cache. URI is host:port or a redis:// URL.
// UseSentinel switches to a failover client over SentinelNodes.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
}

// Sanitize trims addresses and drops blank sentinel nodes.
func (c *RedisConfig) Sanitize() {
	c.URI = strings.TrimSpace(c.URI)
	nodes := c.SentinelNodes[:0]
	for _, n := range c.SentinelNodes {
		if n = strings.TrimSpace(n); n != "" {
			nodes = append(nodes, n)
		}
	}
	c.SentinelNodes = nodes
	if c.DB < 0 {
		c.DB = 0
	}
}
