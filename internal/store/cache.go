package store

import (
	"context"
	"time"
)

// Cache is the key/value collaborator used by the statistics aggregator
// for read-through caching. Implementations serialize values as JSON.
//
// Cache failures are always best-effort from the caller's perspective: a
// failed Get is treated as a miss and a failed Set or Delete must never
// fail the operation that triggered it.
type Cache interface {
	// Get loads the value stored under key into dest. The boolean
	// reports whether the key was present (a cache hit).
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key with the given time-to-live.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete evicts the value stored under key. Deleting an absent key
	// is not an error.
	Delete(ctx context.Context, key string) error
}
