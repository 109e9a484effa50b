package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// cacheKey builds the deterministic key spec.md §4.7 describes:
// (company_symbol, analysis_types_hash, source, periods).
func cacheKey(symbol string, analysisTypes []string, source string, periods int) string {
	sorted := append([]string(nil), analysisTypes...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, t := range sorted {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s:%x:%s:%d", symbol, h.Sum(nil), source, periods)
}

// ResultCache stores completed ResultBundles keyed by cacheKey, with a
// TTL. Cache-hit submissions short-circuit straight to COMPLETED.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.ResultBundle, bool)
	Set(ctx context.Context, key string, bundle *domain.ResultBundle, ttl time.Duration)
}

// memoryCache is the default in-process cache, used when no Redis
// backend is configured.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	bundle    *domain.ResultBundle
	expiresAt time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]memoryCacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*domain.ResultBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.bundle, true
}

func (c *memoryCache) Set(_ context.Context, key string, bundle *domain.ResultBundle, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{bundle: bundle, expiresAt: time.Now().Add(ttl)}
}

// redisCache is the pluggable Redis-backed cache for multi-instance
// deployments; it JSON-encodes the result bundle as the value.
type redisCache struct {
	client *redis.Client
}

func newRedisCache(addr string) *redisCache {
	return &redisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *redisCache) Get(ctx context.Context, key string) (*domain.ResultBundle, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache get failed")
		}
		return nil, false
	}
	var bundle domain.ResultBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache value corrupt")
		return nil, false
	}
	return &bundle, true
}

func (c *redisCache) Set(ctx context.Context, key string, bundle *domain.ResultBundle, ttl time.Duration) {
	data, err := json.Marshal(bundle)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache set failed")
	}
}
