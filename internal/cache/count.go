package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/devreg/devreg/internal/record"
	"github.com/redis/go-redis/v9"
)

// CountCache memoizes CountDocuments results in Redis.
// Keys are "<prefix><filter key>"; a write to the collection drops them all.
// A nil *CountCache is valid and caches nothing.
type CountCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCountCache returns a cache using the given client. Prefix may be empty.
func NewCountCache(client *redis.Client, prefix string, ttl time.Duration) *CountCache {
	if client == nil {
		return nil
	}
	if prefix == "" {
		prefix = "devreg:count:"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CountCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *CountCache) key(f record.Filter) string {
	return c.prefix + f.Key()
}

// Get returns the cached count and whether it was present.
func (c *CountCache) Get(ctx context.Context, f record.Filter) (int64, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	s, err := c.client.Get(ctx, c.key(f)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// corrupt entry, drop it
		_ = c.client.Del(ctx, c.key(f)).Err()
		return 0, false, nil
	}
	return n, true, nil
}

// Set stores n for the filter with the cache TTL.
func (c *CountCache) Set(ctx context.Context, f record.Filter, n int64) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(f), strconv.FormatInt(n, 10), c.ttl).Err()
}

// Invalidate removes every cached count under the prefix.
func (c *CountCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection.
func (c *CountCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
