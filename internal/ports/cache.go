package ports

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-key TTL.
type Cache interface {
	// Set stores value under key. A zero ttl keeps the key until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns nil without error when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
}
