package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCacheServesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	loads := 0
	cache := NewCache(5*time.Minute, clock, func(ctx context.Context) (int, error) {
		loads++
		return loads, nil
	})

	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(4 * time.Minute)
	v, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v, "value within TTL must come from cache")
	assert.Equal(t, 1, loads)
}

func TestCacheReloadsAfterExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	loads := 0
	cache := NewCache(5*time.Minute, clock, func(ctx context.Context) (int, error) {
		loads++
		return loads, nil
	})

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, loads)
}

func TestCacheServesStaleOnLoadFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	fail := false
	cache := NewCache(time.Minute, clock, func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("source down")
		}
		return "roster", nil
	})

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	fail = true
	clock.Advance(2 * time.Minute)
	v, err := cache.Get(context.Background())
	require.NoError(t, err, "stale value must be served when refresh fails")
	assert.Equal(t, "roster", v)
}

func TestCacheFirstLoadFailurePropagates(t *testing.T) {
	cache := NewCache(time.Minute, nil, func(ctx context.Context) (string, error) {
		return "", errors.New("source down")
	})

	_, err := cache.Get(context.Background())
	assert.ErrorContains(t, err, "source down")
}

func TestCacheInvalidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	loads := 0
	cache := NewCache(time.Hour, clock, func(ctx context.Context) (int, error) {
		loads++
		return loads, nil
	})

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
