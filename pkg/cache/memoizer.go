package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/metrics"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Memoizer caches JSON encoded results of expensive computations. Concurrent
// calls with the same key share one computation.
type Memoizer struct {
	cache  Cache
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

// NewMemoizer returns a Memoizer storing results in c for ttl under keys
// starting with prefix.
func NewMemoizer(c Cache, ttl time.Duration, prefix string) *Memoizer {
	return &Memoizer{cache: c, ttl: ttl, prefix: prefix}
}

// Key derives the cache key of a computation from its name and arguments.
func (m *Memoizer) Key(name string, args any) (string, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("could not marshal memoize args: %w", err)
	}
	sum := sha256.Sum256(b)

	return m.prefix + ":" + name + ":" + hex.EncodeToString(sum[:]), nil
}

// Memoize returns the cached result of fn for (name, args), computing and
// storing it on a miss. Cache failures are logged and fall back to fn.
func Memoize[T any](ctx context.Context, m *Memoizer, name string, args any, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	key, err := m.Key(name, args)
	if err != nil {
		return zero, err
	}

	if b, err := m.cache.Get(ctx, key); err == nil {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			metrics.CacheRequests.WithLabelValues(name, "hit").Inc()

			return out, nil
		}
		logger.Warn(ctx, "could not decode memoized value", zap.String("name", name))
	} else if !errors.Is(err, ErrMiss) {
		logger.Warn(ctx, "could not read memoized value", zap.String("name", name), zap.Error(err))
	}

	metrics.CacheRequests.WithLabelValues(name, "miss").Inc()
	// fn runs detached from the callers' cancellation; a cancelled caller
	// only stops waiting.
	ch := m.group.DoChan(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("could not marshal %s result: %w", name, err)
		}
		if err := m.cache.Set(ctx, key, b, m.ttl); err != nil {
			logger.Warn(ctx, "could not store memoized value", zap.String("name", name), zap.Error(err))
		}

		return b, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		metrics.CacheRequests.WithLabelValues(name, "error").Inc()

		return zero, ctx.Err() //nolint: wrapcheck
	case res = <-ch:
	}
	if res.Err != nil {
		metrics.CacheRequests.WithLabelValues(name, "error").Inc()

		return zero, res.Err
	}
	shared := res.Val

	var out T
	if err := json.Unmarshal(shared.([]byte), &out); err != nil { //nolint: forcetypeassert
		return zero, fmt.Errorf("could not decode %s result: %w", name, err)
	}

	return out, nil
}
