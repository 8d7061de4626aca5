package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/kvfs/pkg/kv"
	"github.com/marmos91/kvfs/pkg/kv/kvtest"
	"github.com/marmos91/kvfs/pkg/kv/memory"
)

func TestConformance(t *testing.T) {
	kvtest.RunConformanceSuite(t, func(t *testing.T) kv.Store {
		store := memory.New()
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestClosedStore(t *testing.T) {
	store := memory.New()
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "/k", []byte("v")))
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "/k")
	assert.ErrorIs(t, err, kv.ErrStoreClosed)
	assert.ErrorIs(t, store.Put(ctx, "/k", []byte("v")), kv.ErrStoreClosed)
	assert.ErrorIs(t, store.Delete(ctx, "/k"), kv.ErrStoreClosed)
	_, err = store.List(ctx, kv.ListOptions{})
	assert.ErrorIs(t, err, kv.ErrStoreClosed)
	assert.ErrorIs(t, store.HealthCheck(ctx), kv.ErrStoreClosed)
}

func TestReturnedValueIsACopy(t *testing.T) {
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	ctx := t.Context()

	original := []byte("immutable")
	require.NoError(t, store.Put(ctx, "/k", original))

	got, err := store.Get(ctx, "/k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := store.Get(ctx, "/k")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}

func TestCustomValueSizeBound(t *testing.T) {
	store := memory.NewWithConfig(memory.Config{MaxValueSize: 8})
	t.Cleanup(func() { store.Close() })
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "/small", make([]byte, 8)))
	assert.ErrorIs(t, store.Put(ctx, "/big", make([]byte, 9)), kv.ErrValueTooLarge)
}
