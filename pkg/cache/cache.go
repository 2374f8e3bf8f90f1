// Package cache stores computed layouts and rendered artifacts.
//
// Layouts are pure functions of the content tree, the expanded set, the
// viewport and the sizing preset, so every input goes into the key (see
// [Keyer]) and entries never need invalidation beyond their TTL.
//
// Three backends are provided:
//
//   - [NullCache]: stores nothing; the default when caching is disabled.
//   - [FileCache]: one file per entry under a directory, for the CLI.
//   - [RedisCache]: shared cache for server deployments.
package cache

import (
	"context"
	"time"
)

// Default lifetimes.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
