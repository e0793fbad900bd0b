// Package cache provides the key/value stores behind the group cache.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/algolovers/newsletter-console-services/internal/appconfig"
)

// Cache stores encoded values by key. A miss is reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the cache backend selected in the configuration.
func New(cfg appconfig.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryCache(cfg.Size)
	case "redis":
		return NewRedisCache(cfg.Redis.URL, cfg.Redis.Prefix, cfg.Redis.EntryTTL())
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
