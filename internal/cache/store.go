// Package cache provides the key-value store used as a TTL cache, as the
// suppression-flag backend and as the search-index storage medium.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist or has expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is the key-value contract shared by the redis and in-memory
// implementations. Values are JSON-encoded on write and decoded on read.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// SetNX sets the key only if absent. It reports whether the key was set,
	// which makes it usable as a suppression flag.
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes every key matching the glob pattern and returns the
	// number of keys removed.
	DelPattern(ctx context.Context, pattern string) (int, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}
