package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisKV(client, "@aj_", zap.NewNop())
}

func setupBadgerKV(t *testing.T) *BadgerKV {
	kv, err := OpenBadger(BadgerOptions{InMemory: true}, "@aj_", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func backends(t *testing.T) map[string]KV {
	_, r := setupRedisKV(t)
	return map[string]KV{
		"redis":  r,
		"badger": setupBadgerKV(t),
	}
}

func TestKV_SetGetDelete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := kv.Get(ctx, "pin")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Set(ctx, "pin", []byte(`"1234"`)))
			val, err := kv.Get(ctx, "pin")
			require.NoError(t, err)
			assert.Equal(t, `"1234"`, string(val))

			require.NoError(t, kv.Set(ctx, "pin", []byte(`"9876"`)))
			val, err = kv.Get(ctx, "pin")
			require.NoError(t, err)
			assert.Equal(t, `"9876"`, string(val))

			require.NoError(t, kv.Delete(ctx, "pin"))
			_, err = kv.Get(ctx, "pin")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisKV_UsesNamespace(t *testing.T) {
	mr, kv := setupRedisKV(t)

	require.NoError(t, kv.Set(context.Background(), "active-disguise", []byte(`"notes"`)))

	raw, err := mr.Get("@aj_active-disguise")
	require.NoError(t, err)
	assert.Equal(t, `"notes"`, raw)
}

func TestRedisKV_ConnectionFailure(t *testing.T) {
	mr, kv := setupRedisKV(t)
	mr.Close()

	_, err := kv.Get(context.Background(), "pin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBadgerKV_CancelledContext(t *testing.T) {
	kv := setupBadgerKV(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, kv.Set(ctx, "pin", []byte(`"1"`)), context.Canceled)
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerOptions{}, "", zap.NewNop())
	assert.Error(t, err)
}

func TestOpenBadger_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := OpenBadger(BadgerOptions{Path: dir, SyncWrites: true}, "@aj_", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "onboarding-complete", []byte("true")))
	require.NoError(t, kv.Close())

	kv, err = OpenBadger(BadgerOptions{Path: dir}, "@aj_", zap.NewNop())
	require.NoError(t, err)
	defer kv.Close()

	val, err := kv.Get(ctx, "onboarding-complete")
	require.NoError(t, err)
	assert.Equal(t, "true", string(val))
}
