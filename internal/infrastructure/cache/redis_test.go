package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	mr.Close()

	_, err := NewRedisClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: port})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr, client := setupMiniredis(t)
	store := NewRedisIdempotencyStore(client, "")
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.True(t, mr.Exists("stripe:event:evt_1"))
	assert.Equal(t, time.Hour, mr.TTL("stripe:event:evt_1"))

	isNew, err = store.MarkProcessed(ctx, "evt_1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew)

	processed, err := store.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, processed)

	require.NoError(t, store.Release(ctx, "evt_1"))
	processed, err = store.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, processed)

	assert.NoError(t, store.Close())
}

func TestRedisIdempotencyStore_Expiry(t *testing.T) {
	mr, client := setupMiniredis(t)
	store := NewRedisIdempotencyStore(client, "test:")
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt_2", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	isNew, err := store.MarkProcessed(ctx, "evt_2", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestRedisIdempotencyStore_ConnectionError(t *testing.T) {
	mr, client := setupMiniredis(t)
	store := NewRedisIdempotencyStore(client, "")
	mr.Close()

	_, err := store.MarkProcessed(context.Background(), "evt_3", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mark event as processed")
}

type catalogEntry struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
}

func TestRedisJSONCache(t *testing.T) {
	mr, client := setupMiniredis(t)
	c := NewRedisJSONCache(client, "")
	ctx := context.Background()

	var got []catalogEntry
	found, err := c.Get(ctx, "catalog:products", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := []catalogEntry{{ID: "price_1", Price: 4900}}
	require.NoError(t, c.Set(ctx, "catalog:products", want, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("fitcoach:cache:catalog:products"))

	found, err = c.Get(ctx, "catalog:products", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, c.Delete(ctx, "catalog:products"))
	found, err = c.Get(ctx, "catalog:products", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisJSONCache_CorruptValue(t *testing.T) {
	mr, client := setupMiniredis(t)
	c := NewRedisJSONCache(client, "p:")
	require.NoError(t, mr.Set("p:bad", "{not json"))

	var got []catalogEntry
	found, err := c.Get(context.Background(), "bad", &got)
	require.Error(t, err)
	assert.False(t, found)
}

func TestRedisRateCounter(t *testing.T) {
	mr, client := setupMiniredis(t)
	counter := NewRedisRateCounter(client, "")
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, reset, err := counter.Hit(ctx, "1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.WithinDuration(t, time.Now().Add(time.Minute), reset, 5*time.Second)
	}

	mr.FastForward(61 * time.Second)

	n, _, err := counter.Hit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "a new window starts after expiry")

	n, _, err = counter.Hit(ctx, "5.6.7.8", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "keys are counted separately")
}

func TestFactory(t *testing.T) {
	t.Run("uses Redis when a client is given", func(t *testing.T) {
		_, client := setupMiniredis(t)
		f := NewFactory(client, WithLogger(zap.NewNop()))
		assert.True(t, f.HasRedis())

		store, err := f.IdempotencyStore()
		require.NoError(t, err)
		assert.IsType(t, &RedisIdempotencyStore{}, store)

		c, err := f.JSONCache()
		require.NoError(t, err)
		assert.IsType(t, &RedisJSONCache{}, c)

		rc, err := f.RateCounter()
		require.NoError(t, err)
		assert.IsType(t, &RedisRateCounter{}, rc)
	})

	t.Run("falls back to memory without a client", func(t *testing.T) {
		f := NewFactory(nil)
		assert.False(t, f.HasRedis())

		store, err := f.IdempotencyStore()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
		_ = store.Close()

		c, err := f.JSONCache()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryJSONCache{}, c)

		rc, err := f.RateCounter()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryRateCounter{}, rc)
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		f := NewFactory(nil, WithInMemoryFallback(false))

		_, err := f.IdempotencyStore()
		assert.ErrorIs(t, err, ErrRedisRequired)
		_, err = f.JSONCache()
		assert.ErrorIs(t, err, ErrRedisRequired)
		_, err = f.RateCounter()
		assert.ErrorIs(t, err, ErrRedisRequired)
	})
}
