package valkeycache_test

import (
	"context"
	"fmt"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/cache/valkeycache"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupValkey(t *testing.T) *valkeycache.Cache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping valkey container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "valkey/valkey:8",
			ExposedPorts: []string{"6379"},
			WaitingFor:   wait.ForListeningPort("6379"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	c, err := valkeycache.New(fmt.Sprintf("redis://%s:%d/0", host, port.Int()))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}

func TestValkeyCache(t *testing.T) {
	c := setupValkey(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.Get(ctx, "neris:auth:sid:missing")
	require.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "neris:auth:sid:ids", []byte(`["FD1"]`), time.Hour))
	got, err := c.Get(ctx, "neris:auth:sid:ids")
	require.NoError(t, err)
	require.JSONEq(t, `["FD1"]`, string(got))

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Second))
	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "short")

		return err == cache.ErrMiss //nolint: errorlint
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, c.Delete(ctx, "neris:auth:sid:ids"))
	_, err = c.Get(ctx, "neris:auth:sid:ids")
	require.ErrorIs(t, err, cache.ErrMiss)
}
