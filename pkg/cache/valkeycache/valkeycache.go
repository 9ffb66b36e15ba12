// Package valkeycache implements cache.Cache on top of Valkey (or any Redis
// compatible server).
package valkeycache

import (
	"context"
	"fmt"
	"nerisdash/pkg/cache"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Cache talks to Valkey through a pooled valkey.Client.
type Cache struct {
	client valkey.Client
}

// New connects to the server addressed by url, e.g. redis://127.0.0.1:6379/0.
func New(url string) (*Cache, error) {
	opt, err := valkey.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse valkey url: %w", err)
	}

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("could not connect to valkey: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client valkey.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("could not get %s from valkey: %w", key, err)
	}

	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var cmd valkey.Completed
	if ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Ex(ttl).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()
	}
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("could not set %s in valkey: %w", key, err)
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("could not delete %s from valkey: %w", key, err)
	}

	return nil
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("could not ping valkey: %w", err)
	}

	return nil
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}

var _ cache.Cache = (*Cache)(nil)
