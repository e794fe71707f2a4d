// Package cache provides a short-TTL Redis cache for rendered leaderboard
// responses. Cache misses are cheap (the rankings are recomputed from
// Postgres), so entries are never invalidated explicitly; they just expire.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache defines the interface for caching rendered API responses.
type Cache interface {
	// Get retrieves a cached payload. Returns (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a payload under the cache's TTL.
	Set(ctx context.Context, key string, payload []byte) error
}

// RedisCache implements Cache using Redis with a fixed TTL per entry.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) error {
	return c.client.Set(ctx, c.prefix+key, payload, c.ttl).Err()
}

// Noop is a Cache that stores nothing; used when Redis is not configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (Noop) Set(ctx context.Context, key string, payload []byte) error {
	return nil
}
