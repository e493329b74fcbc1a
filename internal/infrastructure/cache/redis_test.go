package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/infrastructure/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedisIdempotencyStore(client, "")

	isNew, err := store.MarkProcessed(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.True(t, mr.Exists(defaultIdempotencyPrefix+"abc"))

	isNew, err = store.MarkProcessed(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	mr.FastForward(2 * time.Minute)
	processed, err := store.IsProcessed(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, processed, "key should expire with its TTL")

	_, err = store.MarkProcessed(ctx, "def", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "def"))
	processed, err = store.IsProcessed(ctx, "def")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestIdempotencyStoreFactory(t *testing.T) {
	_, client := newRedis(t)

	t.Run("redis backend with a client", func(t *testing.T) {
		store := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "redis"}, WithRedisClient(client)).CreateStore()
		defer store.Close()
		assert.IsType(t, &RedisIdempotencyStore{}, store)
	})

	t.Run("redis backend without a client falls back", func(t *testing.T) {
		store := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "redis"}).CreateStore()
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("memory backend", func(t *testing.T) {
		store := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "memory"}, WithRedisClient(client)).CreateStore()
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})
}

type summary struct {
	Revenue string `json:"revenue"`
}

func TestReportCache(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	c := NewReportCache(client, time.Minute)
	tenantA, tenantB := uuid.New(), uuid.New()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return summary{Revenue: "100.00"}, nil
	}

	key, err := c.BuildKey(ctx, tenantA, "report", "pnl", "2026-01")
	require.NoError(t, err)
	assert.Contains(t, key, tenantA.String())
	assert.Contains(t, key, ":v1")

	var got summary
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, "100.00", got.Revenue)
	assert.Equal(t, 1, calls, "second read should come from the cache")

	t.Run("bump moves the tenant to a fresh key", func(t *testing.T) {
		require.NoError(t, c.Bump(ctx, tenantA))
		bumped, err := c.BuildKey(ctx, tenantA, "report", "pnl", "2026-01")
		require.NoError(t, err)
		assert.NotEqual(t, key, bumped)
		assert.Contains(t, bumped, ":v2")

		require.NoError(t, c.FetchJSON(ctx, bumped, &got, loader))
		assert.Equal(t, 2, calls)
	})

	t.Run("other tenants keep their version", func(t *testing.T) {
		other, err := c.BuildKey(ctx, tenantB, "report", "pnl", "2026-01")
		require.NoError(t, err)
		assert.Contains(t, other, ":v1")
	})

	t.Run("loader errors are not cached", func(t *testing.T) {
		boom := errors.New("db down")
		err := c.FetchJSON(ctx, "backoffice:failing", &got, func(context.Context) (interface{}, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		exists, err := client.Exists(ctx, "backoffice:failing").Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})
}
