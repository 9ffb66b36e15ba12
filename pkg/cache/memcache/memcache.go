// Package memcache is an in-process cache.Cache used when no Valkey URL is
// configured.
package memcache

import (
	"context"
	"nerisdash/pkg/cache"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache adapts a ttlcache to cache.Cache. Expired entries are never returned
// and, with Cleanup set, are evicted in the background as they expire.
type Cache struct {
	items *ttlcache.Cache[string, []byte]

	cleanup   bool
	closeOnce sync.Once
	done      chan struct{}
}

// Options configures a Cache.
type Options struct {
	// Capacity bounds the number of entries, evicting the least recently
	// used one. Zero means unbounded.
	Capacity uint64
	// Cleanup starts the background eviction of expired entries.
	Cleanup bool
}

// New creates a Cache. Close must be called to stop the background cleanup.
func New(opts Options) *Cache {
	c := &Cache{
		items: ttlcache.New(
			ttlcache.WithCapacity[string, []byte](opts.Capacity),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
		cleanup: opts.Cleanup,
		done:    make(chan struct{}),
	}

	if !c.cleanup {
		close(c.done)

		return c
	}

	go func() {
		defer close(c.done)
		c.items.Start()
	}()

	return c
}

// Close stops the background cleanup and waits for it to exit.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		if !c.cleanup {
			return
		}
		// Stop is a no-op until Start has begun, so retry until it exits.
		for {
			c.items.Stop()
			select {
			case <-c.done:
				return
			case <-time.After(time.Millisecond):
			}
		}
	})
}

// Len returns the number of unexpired entries.
func (c *Cache) Len() int {
	return c.items.Len()
}

// Evictions returns how many entries were removed so far, by expiry,
// capacity or Delete.
func (c *Cache) Evictions() uint64 {
	return c.items.Metrics().Evictions
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	item := c.items.Get(key)
	if item == nil {
		return nil, cache.ErrMiss
	}

	return append([]byte(nil), item.Value()...), nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, append([]byte(nil), value...), ttl)

	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)

	return nil
}

var _ cache.Cache = (*Cache)(nil)
