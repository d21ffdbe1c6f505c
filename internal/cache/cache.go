// Package cache provides small key/value caches with expiry used in front of slower lookups.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys until their TTL elapses.
type Cache interface {
	// Get returns the value and true when the key is present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Clock abstracts time so expiry can be controlled in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
