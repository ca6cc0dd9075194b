package config

import (
	"strings"
	"time"
)

// BackendConfig points the portal at the property backend REST API.
type BackendConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8888/api"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`

	// CatalogCacheTTL caches listings and property details in Redis.
	// Zero disables the cache.
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`
}

// Sanitize trims the base URL and enforces a positive timeout.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 15 * time.Second
	}
	if b.CatalogCacheTTL < 0 {
		b.CatalogCacheTTL = 0
	}
}
