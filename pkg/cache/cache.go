// Package cache stores raw PopShops responses between runs.
//
// Caching is opt-in and happens at the transport level: the bytes of a
// response are cached, never the resource graph built from them. Three
// backends implement [Cache]:
//
//   - [NullCache]: caching disabled (the default)
//   - [FileCache]: one JSON file per entry under a cache directory
//   - [RedisCache]: a shared Redis instance
//
// Keys are produced by a [Keyer]. [NewScopedKeyer] prefixes every key, so
// several accounts can share one Redis database without collisions.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes. A missing or expired entry is reported
	// as ok == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey returns the key for a raw HTTP response in namespace.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
