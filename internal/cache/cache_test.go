package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type entry struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

func TestRedis_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(getRedis(t), time.Minute)
	key := "test:" + uuid.NewString()

	var got entry
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	v, err := c.Version(ctx, key)
	require.NoError(t, err)
	require.NoError(t, c.Fill(ctx, key, v, entry{ID: "a", Stock: 3}))
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, entry{ID: "a", Stock: 3}, got)

	require.NoError(t, c.Delete(ctx, key))
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedis_FillAfterInvalidationIsDropped(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(getRedis(t), time.Minute)
	key := "test:" + uuid.NewString()

	v, err := c.Version(ctx, key)
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, key))
	require.NoError(t, c.Fill(ctx, key, v, entry{ID: "a", Stock: 5}))

	var got entry
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	v, err = c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NoError(t, c.Fill(ctx, key, v, entry{ID: "a", Stock: 3}))
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got.Stock)
}

func TestRedis_DeleteNoKeys(t *testing.T) {
	c := NewRedis(nil, time.Minute)
	assert.NoError(t, c.Delete(context.Background()))
}

func TestConnect_EmptyAddrDisablesCache(t *testing.T) {
	c, err := Connect(context.Background(), "", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, c)
}
