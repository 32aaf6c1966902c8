package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LookupCache stores name-to-ID resolutions so repeated provisioning runs do
// not re-query the controller for every reference.
type LookupCache interface {
	// Fetch returns the cached ID for a key, or ErrCacheMiss.
	Fetch(ctx context.Context, key string) (int, error)
	// Write stores an ID under a key.
	Write(ctx context.Context, key string, id int) error
	// Close releases any resources held by the cache.
	Close() error
}

// MemoryLookupCache is a thread-safe, in-process LookupCache.
type MemoryLookupCache struct {
	mu   sync.RWMutex
	data map[string]int
}

// NewMemoryLookupCache creates an empty in-memory lookup cache.
func NewMemoryLookupCache() *MemoryLookupCache {
	return &MemoryLookupCache{data: make(map[string]int)}
}

// Fetch returns the cached ID for a key, or ErrCacheMiss.
func (c *MemoryLookupCache) Fetch(_ context.Context, key string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.data[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}
	return id, nil
}

// Write stores an ID under a key.
func (c *MemoryLookupCache) Write(_ context.Context, key string, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = id
	return nil
}

// Close is a no-op for the in-memory cache.
func (c *MemoryLookupCache) Close() error { return nil }

// RedisCacheConfig holds the configuration for the Redis-backed lookup cache.
type RedisCacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// RedisLookupCache is a LookupCache backed by Redis, for sharing resolved
// IDs across processes and runs.
type RedisLookupCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewRedisLookupCache creates and connects a RedisLookupCache. It pings the
// server to ensure connectivity before returning.
func NewRedisLookupCache(ctx context.Context, cfg *RedisCacheConfig, logger zerolog.Logger) (*RedisLookupCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Str("redis_address", cfg.Addr).Msg("Connected to Redis lookup cache.")
	return &RedisLookupCache{
		redisClient: rdb,
		ttl:         cfg.TTL,
		logger:      logger.With().Str("component", "RedisLookupCache").Logger(),
	}, nil
}

// Fetch returns the cached ID for a key, or ErrCacheMiss.
func (c *RedisLookupCache) Fetch(ctx context.Context, key string) (int, error) {
	value, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}
		return 0, fmt.Errorf("redis fetch for %s failed: %w", key, err)
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupt cache entry for %s: %w", key, err)
	}
	return id, nil
}

// Write stores an ID under a key with the configured TTL.
func (c *RedisLookupCache) Write(ctx context.Context, key string, id int) error {
	if err := c.redisClient.Set(ctx, key, strconv.Itoa(id), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis write for %s failed: %w", key, err)
	}
	return nil
}

// Close closes the Redis client connection.
func (c *RedisLookupCache) Close() error {
	c.logger.Info().Msg("Closing Redis lookup cache...")
	return c.redisClient.Close()
}
