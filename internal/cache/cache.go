package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/greenlens/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from its parts
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "greenlens:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache selected by cfg. A disabled cache never stores anything.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return NopCache{}, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.DiskDir, cfg.DiskTTL), nil
	case "layered":
		return NewLayeredCache(
			NewMemoryCache(cfg.MemoryTTL, 10*time.Minute),
			NewDiskCache(cfg.DiskDir, cfg.DiskTTL),
		), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires cache.redis_addr")
		}
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MemoryTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// NopCache drops every write and misses every read
type NopCache struct{}

func (NopCache) Get(string) ([]byte, bool) { return nil, false }

func (NopCache) Set(string, []byte, time.Duration) error { return nil }

func (NopCache) Delete(string) error { return nil }

func (NopCache) Clear() error { return nil }
