package memcache_test

import (
	"context"
	"errors"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/cache/memcache"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(memcache.Options{})
	defer c.Close()

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 50*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", []byte("f"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")

		return errors.Is(err, cache.ErrMiss)
	}, time.Second, 10*time.Millisecond)

	got, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	require.Equal(t, []byte("f"), got)

	require.NoError(t, c.Delete(ctx, "forever"))
	require.NoError(t, c.Delete(ctx, "forever"))
	_, err = c.Get(ctx, "forever")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestCacheHitDoesNotExtend(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(memcache.Options{})
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 300*time.Millisecond))
	for start := time.Now(); time.Since(start) < 150*time.Millisecond; {
		_, err := c.Get(ctx, "k")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")

		return errors.Is(err, cache.ErrMiss)
	}, 250*time.Millisecond, 10*time.Millisecond)
}

func TestCacheCapacity(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(memcache.Options{Capacity: 2})
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	require.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "a")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(memcache.Options{})
	defer c.Close()

	v := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", v, 0))
	v[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(memcache.Options{Cleanup: true})

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 20*time.Millisecond))
	require.Equal(t, 1, c.Len())

	require.Eventually(t, func() bool { return c.Evictions() == 1 }, time.Second, 5*time.Millisecond)
	require.Zero(t, c.Len())

	c.Close()
	c.Close()
}

func TestCloseWithoutCleanup(t *testing.T) {
	c := memcache.New(memcache.Options{})
	c.Close()
	c.Close()
}
