package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (AccountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAccountCache(client, ttl), mr
}

func TestAccountCacheMissThenHit(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "A@X.com", true))
	exists, found, err := cache.Get(ctx, " a@x.com ")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, exists)

	require.NoError(t, cache.Set(ctx, "b@x.com", false))
	exists, found, err = cache.Get(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, exists)

	assert.Equal(t, "1", mustGet(t, mr, "okta_import:account:a@x.com"))
}

func TestAccountCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a@x.com", true))
	mr.FastForward(2 * time.Minute)

	_, found, err := cache.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAccountCacheError(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "a@x.com")
	assert.Error(t, err)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	val, err := mr.Get(key)
	require.NoError(t, err)
	return val
}
