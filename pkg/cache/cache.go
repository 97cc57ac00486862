// Package cache provides the byte-level caches layout results are stored in,
// together with the keyers that derive stable cache keys from graph content
// and layout parameters.
package cache

import (
	"context"
	"time"
)

// TTLLayout is the default expiry for cached layout results.
const TTLLayout = 7 * 24 * time.Hour

// Cache stores opaque byte values under string keys with optional expiry.
// A zero TTL means the entry never expires.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
