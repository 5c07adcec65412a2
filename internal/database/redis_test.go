package database

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

// Runs against a real server only when TEST_REDIS_ADDR is set.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: addr}))
	require.NoError(t, r.Ping(context.Background()))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedis_TryLockIsExclusive(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()

	token, ok, err := r.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = r.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Unlock(ctx, key, token))

	_, ok, err = r.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_UnlockIgnoresForeignToken(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()

	_, ok, err := r.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.Unlock(ctx, key, "someone-else"))

	_, ok, err = r.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lock must still be held by the original owner")
}
