// Package memcache implements the store.Cache interface with an
// in-process map. It is the fallback when no Redis address is
// configured, and the cache of choice in tests.
package memcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mlowery/tasktrack-api/internal/store"
)

// Verify Cache implements store.Cache at compile time.
var _ store.Cache = (*Cache)(nil)

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a concurrency-safe in-memory store.Cache. Expired entries
// are dropped lazily on read, so memory use is bounded by the working
// key set rather than reclaimed by a background sweeper.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is replaceable in tests.
	now func() time.Time
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get loads the JSON value stored under key into dest. Expired or
// missing keys report (false, nil).
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("decoding cached value for %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key as JSON. A non-positive ttl stores the
// entry without expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %q: %w", key, err)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Delete evicts the value stored under key. Absent keys are a no-op.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
