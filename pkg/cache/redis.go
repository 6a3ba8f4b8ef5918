package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the speech cache with a shared redis instance so several
// devices in one household can reuse synthesized audio.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a redis-backed speech cache
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns a cached entry if present
func (c *RedisCache) Get(ctx context.Context, key string) (*SpeechEntry, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var entry SpeechEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

// Set stores an entry with the configured TTL. Failures are ignored: the
// cache is an optimization, never a dependency.
func (c *RedisCache) Set(ctx context.Context, key string, entry *SpeechEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}

// Ping reports whether the redis backend is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
