// Package redis caches the read-side projections: student cards, assembled
// meeting briefings, and grade overview snapshots. The cache is optional;
// both binaries run with it disabled and fall back to Postgres reads.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss          = errors.New("redis: cache miss")
	ErrCacheConnection    = errors.New("redis: connection failed")
	ErrCacheSerialization = errors.New("redis: serialization failed")
	ErrCacheKeyEmpty      = errors.New("redis: key is empty")
)

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns local-development defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the host:port address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Cache is a JSON-over-Redis key-value store with TTLs. The typed caches
// (StudentCache, BriefingCache, OverviewCache) build on it.
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis and verifies the connection with a ping.
func NewCache(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return &Cache{client: client}, nil
}

// Close releases the client's connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the connection. The health endpoint calls this.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// Get unmarshals the value at key into dest. Returns ErrCacheMiss when the
// key does not exist.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("%w: get %s: %v", ErrCacheConnection, key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: unmarshal %s: %v", ErrCacheSerialization, key, err)
	}
	return nil
}

// Set marshals value and stores it under key. A zero ttl means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrCacheSerialization, key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrCacheConnection, key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: delete: %v", ErrCacheConnection, err)
	}
	return nil
}

// DeleteByPattern removes every key matching pattern, scanning in batches
// so large invalidations do not block the server the way KEYS would.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	if pattern == "" {
		return ErrCacheKeyEmpty
	}

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.Delete(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %v", ErrCacheConnection, pattern, err)
	}
	return c.Delete(ctx, batch...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Key construction
// ─────────────────────────────────────────────────────────────────────────────

// Key prefixes. StudentCache.InvalidateAll scans by these, so every typed
// key must start with one of them.
const (
	PrefixStudent  = "student:"
	PrefixProfile  = "profile:"
	PrefixBriefing = "briefing:"
	PrefixOverview = "overview:"
)

// StudentKey is the cache key for a student card.
func StudentKey(studentID string) string {
	return PrefixStudent + studentID
}

// ProfileKey is the cache key for an assembled meeting profile.
func ProfileKey(studentID string) string {
	return PrefixProfile + studentID
}

// BriefingKey is the cache key for a meeting briefing.
func BriefingKey(studentID string) string {
	return PrefixBriefing + studentID
}

// OverviewKey is the cache key for a grade overview snapshot.
func OverviewKey(grade string) string {
	return PrefixOverview + grade
}
