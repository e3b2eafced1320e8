package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0", "callroom:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "http://not-redis", "callroom:")
	assert.ErrorContains(t, err, "parse redis url")
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), "redis://"+addr+"/0", "callroom:")
	assert.ErrorContains(t, err, "connect to redis")
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "hello", "world", time.Minute))

	got, err := store.Get(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "world", got)

	raw, err := mr.Get("callroom:hello")
	require.NoError(t, err)
	assert.Equal(t, "world", raw)
	assert.False(t, mr.Exists("hello"))
	assert.Equal(t, time.Minute, mr.TTL("callroom:hello"))
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "hello", "world", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := store.Get(ctx, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}
