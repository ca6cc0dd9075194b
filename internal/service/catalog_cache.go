package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

var _ ports.CatalogAPI = (*CatalogCache)(nil)

const (
	catalogListKey     = "catalog:list"
	catalogPropertyKey = "catalog:property:"
)

// CatalogCacheOptions bundles dependencies for NewCatalogCache.
type CatalogCacheOptions struct {
	Catalog ports.CatalogAPI
	Cache   ports.Cache
	TTL     time.Duration
	Logger  *zap.Logger
}

// CatalogCache is a read-through cache in front of the backend catalog.
// Listings and property details are cached for TTL; admin writes invalidate
// the affected keys. Cache failures fall back to the backend.
type CatalogCache struct {
	next   ports.CatalogAPI
	cache  ports.Cache
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewCatalogCache wraps opts.Catalog.
func NewCatalogCache(opts CatalogCacheOptions) *CatalogCache {
	if opts.Catalog == nil {
		panic("CatalogAPI is required")
	}
	if opts.Cache == nil {
		panic("Cache is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{next: opts.Catalog, cache: opts.Cache, ttl: ttl, logger: logger}
}

func (c *CatalogCache) ListProperties(ctx context.Context) ([]model.Property, error) {
	var props []model.Property
	if c.lookup(ctx, catalogListKey, &props) {
		return props, nil
	}
	v, err, _ := c.group.Do(catalogListKey, func() (any, error) {
		list, listErr := c.next.ListProperties(ctx)
		if listErr != nil {
			return nil, listErr
		}
		c.store(ctx, catalogListKey, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Property), nil
}

func (c *CatalogCache) GetProperty(ctx context.Context, id string) (model.Property, error) {
	key := catalogPropertyKey + id
	var p model.Property
	if id != "" && c.lookup(ctx, key, &p) {
		return p, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		prop, getErr := c.next.GetProperty(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if id != "" {
			c.store(ctx, key, prop)
		}
		return prop, nil
	})
	if err != nil {
		return model.Property{}, err
	}
	return v.(model.Property), nil
}

func (c *CatalogCache) CreateProperty(
	ctx context.Context,
	credential string,
	req model.CreatePropertyRequest,
) (model.Property, error) {
	p, err := c.next.CreateProperty(ctx, credential, req)
	if err != nil {
		return p, err
	}
	c.invalidate(ctx, catalogListKey)
	return p, nil
}

func (c *CatalogCache) DeleteProperty(ctx context.Context, credential, id string) (string, error) {
	msg, err := c.next.DeleteProperty(ctx, credential, id)
	if err != nil {
		return msg, err
	}
	c.invalidate(ctx, catalogListKey, catalogPropertyKey+id)
	return msg, nil
}

func (c *CatalogCache) lookup(ctx context.Context, key string, dst any) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == nil {
		return false
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("discarding malformed catalog cache entry", zap.String("key", key), zap.Error(err))
		c.invalidate(ctx, key)
		return false
	}
	return true
}

func (c *CatalogCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err = c.cache.Set(context.WithoutCancel(ctx), key, raw, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CatalogCache) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if _, err := c.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			c.logger.Warn("catalog cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}
