// Package cache defines the string key-value primitive that backs the
// seen-sets, with interchangeable remote and local backends.
package cache

import (
	"context"
	"time"
)

// Cache is a string cache with per-key expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored at key.
	// A missing or expired key yields found=false and a nil error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value at key, replacing any previous value and expiry.
	// ok reports whether the store acknowledged the write.
	Set(ctx context.Context, key, value string, ttl time.Duration) (ok bool, err error)

	// Delete removes key and returns the number of keys removed.
	Delete(ctx context.Context, key string) (int64, error)

	// Close releases any resources held by the cache.
	Close() error
}
