// Package cache stores JSON-encoded values under string keys. The redis
// driver is used in deployments; the memory driver backs tests and
// single-process runs.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the driver interface.
type Store interface {
	// Get unmarshals the value under key into dest. Returns true on a hit,
	// false on miss or error.
	Get(ctx context.Context, key string, dest interface{}) bool

	// Set stores value under key for ttl. Zero ttl means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Del removes one or more keys.
	Del(ctx context.Context, keys ...string) error
}

// Remember returns the cached value under key, or calls load and caches
// its result. hit reports whether the value came from the cache. Cache
// write failures are ignored; the loaded value is still returned.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func() (T, error)) (val T, hit bool, err error) {
	if s.Get(ctx, key, &val) {
		return val, true, nil
	}
	val, err = load()
	if err != nil {
		return val, false, err
	}
	_ = s.Set(ctx, key, val, ttl)
	return val, false, nil
}

func encode(value interface{}) ([]byte, error) { return json.Marshal(value) }

func decode(data []byte, dest interface{}) bool { return json.Unmarshal(data, dest) == nil }
