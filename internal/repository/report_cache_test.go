//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spec-kit/service-orders/internal/domain"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisReportCache(t *testing.T) {
	cache := NewRedisReportCache(newRedisClient(t), time.Minute)
	ctx := context.Background()

	gen, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	_, ok, err := cache.GetStats(ctx, gen)
	require.NoError(t, err)
	assert.False(t, ok)

	stats := domain.OrderStats{Open: 4, Closed: 3, Total: 7, Corrective: 5, Preventive: 2}
	require.NoError(t, cache.SetStats(ctx, gen, stats))

	cached, ok, err := cache.GetStats(ctx, gen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, cached)

	require.NoError(t, cache.Invalidate(ctx))
	next, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	_, ok, err = cache.GetStats(ctx, next)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisReportCache_LateWriteUnderOldGeneration(t *testing.T) {
	cache := NewRedisReportCache(newRedisClient(t), time.Minute)
	ctx := context.Background()

	gen, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.SetStats(ctx, gen, domain.OrderStats{Open: 1, Total: 1}))

	current, err := cache.Generation(ctx)
	require.NoError(t, err)
	_, ok, err := cache.GetStats(ctx, current)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisReportCache_Expires(t *testing.T) {
	cache := NewRedisReportCache(newRedisClient(t), time.Second)
	ctx := context.Background()

	require.NoError(t, cache.SetStats(ctx, 0, domain.OrderStats{Open: 1, Total: 1}))
	require.Eventually(t, func() bool {
		_, ok, err := cache.GetStats(ctx, 0)
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}
