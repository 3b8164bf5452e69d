// Package cache provides content fingerprints and a small byte cache.
//
// Fingerprints ([Hash], [Key]) identify a graph, a configuration, or a
// pipeline result by content so that snapshots can record exactly what they
// were computed from and the API can reuse expensive renders.
//
// The [Cache] interface is implemented by [MemoryCache] for the API server and
// by [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// NullCache satisfies [Cache] without storing anything. Every Get misses, so
// renders are recomputed on each request.
type NullCache struct{}

// NewNullCache returns a cache that keeps nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
