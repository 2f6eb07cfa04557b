// Package redis caches pillar search results in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/metrics"
	"github.com/example/cadastre/internal/ports/secondary"
)

const (
	keyPrefix     = "cadastre:search:"
	generationKey = keyPrefix + "gen"
)

// PillarCache implements secondary.SearchCache on Redis. Entry keys embed the
// current generation; Invalidate bumps the generation and lets stale entries
// expire on their TTL. Redis failures degrade to cache misses.
type PillarCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// Open creates a client for addr. An empty addr returns nil.
func Open(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// NewPillarCache creates a new PillarCache.
func NewPillarCache(rc *redis.Client, ttl time.Duration) *PillarCache {
	return &PillarCache{rc: rc, ttl: ttl}
}

// Generation returns the current generation. A missing key is generation 0.
func (c *PillarCache) Generation(ctx context.Context) (int64, bool) {
	gen, err := c.rc.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.L().Debug("search_cache_generation_failed", "error", err)
		metrics.CacheMissesTotal.Inc()
		return 0, false
	}
	return gen, true
}

// Get returns the payload cached for key at gen.
func (c *PillarCache) Get(ctx context.Context, gen int64, key string) ([]byte, bool) {
	k := entryKey(gen, key)
	b, err := c.rc.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Debug("search_cache_get_failed", "key", k, "error", err)
		}
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return b, true
}

// Put stores a payload for key at gen with the configured TTL.
func (c *PillarCache) Put(ctx context.Context, gen int64, key string, payload []byte) {
	k := entryKey(gen, key)
	if err := c.rc.Set(ctx, k, payload, c.ttl).Err(); err != nil {
		logger.L().Debug("search_cache_put_failed", "key", k, "error", err)
	}
}

// Invalidate makes every previously cached result unreachable.
func (c *PillarCache) Invalidate(ctx context.Context) {
	if err := c.rc.Incr(ctx, generationKey).Err(); err != nil {
		logger.L().Warn("search_cache_invalidate_failed", "error", err)
	}
}

func entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, key)
}

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Generation(context.Context) (int64, bool)          { return 0, false }
func (NoopCache) Get(context.Context, int64, string) ([]byte, bool) { return nil, false }
func (NoopCache) Put(context.Context, int64, string, []byte)        {}
func (NoopCache) Invalidate(context.Context)                        {}

// Ensure the caches implement the interface
var (
	_ secondary.SearchCache = (*PillarCache)(nil)
	_ secondary.SearchCache = NoopCache{}
)
