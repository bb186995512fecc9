// Package rediscache implements the store.Cache interface on top of a
// Redis server using go-redis. Values are stored as JSON strings and
// expiry is delegated to Redis TTLs.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mlowery/tasktrack-api/internal/store"
)

// Cache is a Redis-backed store.Cache.
type Cache struct {
	client *redis.Client
}

// Verify Cache implements store.Cache at compile time.
var _ store.Cache = (*Cache)(nil)

// New creates a Cache around an existing Redis client. The caller owns
// the client's lifecycle.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get loads the JSON value stored under key into dest. A missing key is
// reported as (false, nil), not an error.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decoding cached value for %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key as JSON with the given time-to-live.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete evicts the value stored under key. Absent keys are a no-op.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
