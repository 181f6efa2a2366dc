package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock abstracts time.Now so cache expiry is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Loader produces a fresh value for a cache entry.
type Loader[T any] func(ctx context.Context) (T, error)

// Cache is a single-value TTL cache. The zero value is not usable; create
// one with NewCache.
type Cache[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	clock     Clock
	load      Loader[T]
	value     T
	fetchedAt time.Time
	loaded    bool
}

// NewCache creates a cache refreshing through load at most once per ttl.
// A nil clock falls back to the system clock.
func NewCache[T any](ttl time.Duration, clock Clock, load Loader[T]) *Cache[T] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache[T]{ttl: ttl, clock: clock, load: load}
}

// Get returns the cached value, loading a fresh one when the entry has
// expired. When the loader fails and a previous value exists, the stale
// value is returned with a warning instead of the error.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.loaded && now.Sub(c.fetchedAt) < c.ttl {
		return c.value, nil
	}

	fresh, err := c.load(ctx)
	if err != nil {
		if c.loaded {
			slog.WarnContext(ctx, "cache refresh failed, serving stale value",
				slog.String("error", err.Error()),
				slog.Duration("age", now.Sub(c.fetchedAt)),
			)
			return c.value, nil
		}
		var zero T
		return zero, err
	}

	c.value = fresh
	c.fetchedAt = now
	c.loaded = true
	return c.value, nil
}

// Invalidate forces the next Get to hit the loader.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}
