// Package cache stores computed layouts and rendered artifacts by content
// key, so the same world laid out with the same options is computed once.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for the
// server and [NullCache] to disable caching. Keys come from a [Keyer].
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long entries live when the caller passes no TTL.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
