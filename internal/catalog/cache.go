package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis"
)

// DefaultCacheKey is the key under which Cached stores the list.
const DefaultCacheKey = "spearfished:species"

// Cache stores a species list with a TTL.
type Cache interface {
	// Get returns the cached list, or false on a miss.
	Get(ctx context.Context, key string) ([]Species, bool, error)
	Set(ctx context.Context, key string, species []Species, ttl time.Duration) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	species []Species
	expires time.Time
}

// NewMemoryCache creates an empty cache. A nil now uses time.Now.
func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Species, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	out := make([]Species, len(e.species))
	copy(out, e.species)
	return out, true, nil
}

// Set stores species. A zero ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, species []Species, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{species: make([]Species, len(species))}
	copy(e.species, species)
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// RedisCache stores the list as JSON in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a connected client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedis connects to addr and pings it.
func DialRedis(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Species, bool, error) {
	raw, err := c.client.WithContext(ctx).Get(key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var species []Species
	if err := json.Unmarshal(raw, &species); err != nil {
		return nil, false, fmt.Errorf("decode cached species: %w", err)
	}
	return species, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, species []Species, ttl time.Duration) error {
	raw, err := json.Marshal(species)
	if err != nil {
		return fmt.Errorf("encode species: %w", err)
	}
	if err := c.client.WithContext(ctx).Set(key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Cached serves a source through a cache. Cache failures are logged and
// fall through to the source.
type Cached struct {
	src    Source
	cache  Cache
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps src. A nil logger uses slog.Default().
func NewCached(src Source, cache Cache, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{src: src, cache: cache, key: DefaultCacheKey, ttl: ttl, logger: logger}
}

func (c *Cached) FetchAll(ctx context.Context) ([]Species, error) {
	species, ok, err := c.cache.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("species cache read failed", "error", err)
	}
	if ok {
		return species, nil
	}

	species, err = c.src.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, c.key, species, c.ttl); err != nil {
		c.logger.Warn("species cache write failed", "error", err)
	}
	return species, nil
}
