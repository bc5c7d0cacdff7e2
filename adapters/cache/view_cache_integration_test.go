//go:build integration

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T, ttl time.Duration) (*RedisViewCache, *redis.Client) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start Redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.Eventually(t, func() bool { return rdb.Ping(ctx).Err() == nil }, 3*time.Second, 100*time.Millisecond)

	return NewRedisViewCache(rdb, ttl), rdb
}

func TestRedisViewCache_SetGetInvalidate(t *testing.T) {
	c, rdb := setupRedis(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "/", "idp_1")
	require.NoError(t, err)
	assert.False(t, ok)

	view := json.RawMessage(`{"isOnboarded":true}`)
	require.NoError(t, c.Set(ctx, "/", "idp_1", view))

	got, ok, err := c.Get(ctx, "/", "idp_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, string(view), string(got))

	ttl, err := rdb.TTL(ctx, "view:/:idp_1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, "/", "idp_1"))
	_, ok, err = c.Get(ctx, "/", "idp_1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Invalidate(ctx, "/", "never-cached"))
}

func TestRedisViewCache_Expires(t *testing.T) {
	c, _ := setupRedis(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "/", "idp_2", json.RawMessage(`{}`)))
	assert.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, "/", "idp_2")
		return err == nil && !ok
	}, 5*time.Second, 200*time.Millisecond)
}

func TestRedisViewCache_SetIfAbsentKeepsExisting(t *testing.T) {
	c, rdb := setupRedis(t, time.Minute)
	ctx := context.Background()

	stored, err := c.SetIfAbsent(ctx, "/", "idp_3", json.RawMessage(`{"isOnboarded":false}`))
	require.NoError(t, err)
	assert.True(t, stored)

	require.NoError(t, c.Set(ctx, "/", "idp_3", json.RawMessage(`{"isOnboarded":true}`)))

	stored, err = c.SetIfAbsent(ctx, "/", "idp_3", json.RawMessage(`{"isOnboarded":false}`))
	require.NoError(t, err)
	assert.False(t, stored)

	got, _, err := c.Get(ctx, "/", "idp_3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isOnboarded":true}`, string(got))

	ttl, err := rdb.TTL(ctx, "view:/:idp_3").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
