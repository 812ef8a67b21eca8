package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisKV(client)
}

func TestKVImplementations(t *testing.T) {
	ctx := context.Background()

	impls := map[string]KV{
		"memory": NewMemoryKV(),
		"redis":  newRedisKV(t),
	}

	for name, kv := range impls {
		t.Run(name+" save then load", func(t *testing.T) {
			require.NoError(t, kv.Save(ctx, "k1", []byte(`{"a":1}`)))

			got, err := kv.Load(ctx, "k1")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"a":1}`), got)
		})

		t.Run(name+" load absent key", func(t *testing.T) {
			_, err := kv.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})

		t.Run(name+" overwrite replaces value", func(t *testing.T) {
			require.NoError(t, kv.Save(ctx, "k2", []byte("old")))
			require.NoError(t, kv.Save(ctx, "k2", []byte("new")))

			got, err := kv.Load(ctx, "k2")
			require.NoError(t, err)
			assert.Equal(t, []byte("new"), got)
		})

		t.Run(name+" delete removes key", func(t *testing.T) {
			require.NoError(t, kv.Save(ctx, "k3", []byte("v")))
			require.NoError(t, kv.Delete(ctx, "k3"))

			_, err := kv.Load(ctx, "k3")
			assert.ErrorIs(t, err, ErrNotFound)
		})

		t.Run(name+" delete absent key is a no-op", func(t *testing.T) {
			assert.NoError(t, kv.Delete(ctx, "never-existed"))
		})
	}
}

func TestMemoryKVDetachesStoredBytes(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	value := []byte("original")
	require.NoError(t, kv.Save(ctx, "k", value))
	value[0] = 'X'

	got, err := kv.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}
