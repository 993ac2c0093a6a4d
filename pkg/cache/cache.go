// Package cache stores rendered artifacts keyed by their inputs.
//
// Rendering is a pure function of (tree, view state, render options), so a
// hash of those inputs is a safe cache key. The pipeline consults the cache
// before laying out and rendering, and stores every artifact it produces.
//
// Backends:
//   - [FileCache]: hashed files under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: disables caching
//
// Keys come from a [Keyer]; [ScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default expirations. Entries are content-addressed, so these only bound
// disk and memory use.
const (
	TTLScene    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
