package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-widget-auth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	now := newFixedClock().Now()
	store := auth.NewMemoryRevocationStore()

	ok, err := store.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, store.Add(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, store.Add(ctx, "b", now))
	require.NoError(t, store.Add(ctx, "c", now.Add(-time.Minute)))
	assert.Equal(t, 3, store.Len())

	ok, err = store.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("prune drops entries expired at or before now", func(t *testing.T) {
		n, err := store.Prune(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 1, store.Len())

		ok, _ := store.Contains(ctx, "a")
		assert.True(t, ok)
		ok, _ = store.Contains(ctx, "b")
		assert.False(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Error(t, store.Add(cctx, "d", now))
		_, err := store.Contains(cctx, "a")
		assert.Error(t, err)
	})
}

func TestMemoryRevocationStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryRevocationStore()
	expires := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("token-%d", i%8)
			assert.NoError(t, store.Add(ctx, token, expires))
			ok, err := store.Contains(ctx, token)
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, store.Len())
}

func setupRedisStore(t *testing.T) (*auth.RedisRevocationStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := auth.NewRedisRevocationStoreWithClient(rdb, "")
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisRevocationStore(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)

	ok, err := store.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(ctx, "a", time.Now().Add(time.Minute)))
	require.NoError(t, store.Add(ctx, "a", time.Now().Add(time.Hour)))

	ok, err = store.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	key := auth.DefaultRevocationKeyPrefix + "a"
	assert.True(t, mr.Exists(key))

	// the first Add wins, the key lives as long as the token
	ttl := mr.TTL(key)
	assert.LessOrEqual(t, ttl, time.Minute)
	assert.Greater(t, ttl, 50*time.Second)

	mr.FastForward(2 * time.Minute)
	ok, err = store.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRevocationStore_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)

	require.NoError(t, store.Add(ctx, "old", time.Now().Add(-time.Hour)))
	assert.Equal(t, time.Second, mr.TTL(auth.DefaultRevocationKeyPrefix+"old"))
}

func TestRedisRevocationStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)
	mr.Close()

	_, err := store.Contains(ctx, "a")
	assert.Error(t, err)
	assert.Error(t, store.Add(ctx, "a", time.Now().Add(time.Hour)))
}

func TestNewRedisRevocationStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	store, err := auth.NewRedisRevocationStore(ctx, "redis://"+mr.Addr()+"/0", "test:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Add(ctx, "a", time.Now().Add(time.Hour)))
	assert.True(t, mr.Exists("test:a"))

	_, err = auth.NewRedisRevocationStore(ctx, "not a url", "")
	assert.Error(t, err)
}

func TestRedisRevocationStore_WithTokenService(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t)
	tokens := auth.NewTokenService(testKey, time.Hour, testIssuer, store)

	token, err := tokens.Encode("user", false, time.Hour)
	require.NoError(t, err)
	claims, err := tokens.Decode(ctx, token)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims))

	_, err = tokens.Decode(ctx, token)
	kind, _ := auth.KindOf(err)
	assert.Equal(t, auth.FailureBlacklisted, kind)
}
