// Package kvtest provides a conformance test suite for kv.Store implementations.
//
// All store backends (memory, badger, bolt, s3) should pass these tests. The
// suite verifies that every implementation satisfies the Store behavioral
// contract, catching regressions when backend code changes.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    kvtest.RunConformanceSuite(t, func(t *testing.T) kv.Store {
//	        return memory.New()
//	    })
//	}
//
// The factory receives *testing.T so it can call t.TempDir() for stores that
// need filesystem paths (badger, bolt) and t.Cleanup for teardown.
package kvtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/kvfs/pkg/kv"
)

// StoreFactory creates a fresh, empty kv.Store for each test.
type StoreFactory func(t *testing.T) kv.Store

// RunConformanceSuite runs the full conformance suite against the provided
// factory. Each test gets a fresh store instance to ensure isolation.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("GetPut", func(t *testing.T) { testGetPut(t, factory) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("PutOverwrites", func(t *testing.T) { testPutOverwrites(t, factory) })
	t.Run("BinarySafety", func(t *testing.T) { testBinarySafety(t, factory) })
	t.Run("EmptyValue", func(t *testing.T) { testEmptyValue(t, factory) })
	t.Run("ValueSizeBound", func(t *testing.T) { testValueSizeBound(t, factory) })
	t.Run("DeleteIdempotent", func(t *testing.T) { testDeleteIdempotent(t, factory) })
	t.Run("ListPrefix", func(t *testing.T) { testListPrefix(t, factory) })
	t.Run("ListPagination", func(t *testing.T) { testListPagination(t, factory) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, factory) })
	t.Run("HealthCheck", func(t *testing.T) { testHealthCheck(t, factory) })
}

func testGetPut(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "/a/b", []byte("hello")))

	got, err := store.Get(ctx, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func testGetMissing(t *testing.T, factory StoreFactory) {
	store := factory(t)

	_, err := store.Get(t.Context(), "/nope")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func testPutOverwrites(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "/k", []byte("first")))
	require.NoError(t, store.Put(ctx, "/k", []byte("second")))

	got, err := store.Get(ctx, "/k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func testBinarySafety(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	// Every byte value must round-trip untouched.
	value := make([]byte, 256)
	for i := range value {
		value[i] = byte(i)
	}

	require.NoError(t, store.Put(ctx, "/bin", value))

	got, err := store.Get(ctx, "/bin")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func testEmptyValue(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "/empty", []byte{}))

	got, err := store.Get(ctx, "/empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testValueSizeBound(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	// The default bound admits values up to kv.DefaultMaxValueSize bytes.
	atLimit := make([]byte, kv.DefaultMaxValueSize)
	require.NoError(t, store.Put(ctx, "/at-limit", atLimit))

	over := make([]byte, kv.DefaultMaxValueSize+1)
	err := store.Put(ctx, "/over", over)
	require.ErrorIs(t, err, kv.ErrValueTooLarge)

	_, err = store.Get(ctx, "/over")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound, "rejected put must not store anything")
}

func testDeleteIdempotent(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "/gone", []byte("x")))
	require.NoError(t, store.Delete(ctx, "/gone"))

	_, err := store.Get(ctx, "/gone")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)

	// Deleting an absent key succeeds.
	require.NoError(t, store.Delete(ctx, "/gone"))
	require.NoError(t, store.Delete(ctx, "/never-existed"))
}

func testListPrefix(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	for _, key := range []string{"/a/1", "/a/2", "/a/sub/3", "/b/1"} {
		require.NoError(t, store.Put(ctx, key, []byte("v")))
	}

	page, err := store.List(ctx, kv.ListOptions{Prefix: "/a/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/1", "/a/2", "/a/sub/3"}, page.Keys)
	assert.Empty(t, page.NextMarker)

	// Prefix matching is plain lexical, not path-aware.
	page, err = store.List(ctx, kv.ListOptions{Prefix: "/a"})
	require.NoError(t, err)
	assert.Len(t, page.Keys, 3)
}

func testListPagination(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	const total = 7
	for i := 0; i < total; i++ {
		key := fmt.Sprintf("/page/%02d", i)
		require.NoError(t, store.Put(ctx, key, []byte("v")))
	}

	var collected []string
	marker := ""
	pages := 0
	for {
		page, err := store.List(ctx, kv.ListOptions{Prefix: "/page/", Marker: marker, Limit: 3})
		require.NoError(t, err)
		collected = append(collected, page.Keys...)
		pages++
		require.Less(t, pages, 10, "pagination must terminate")

		if page.NextMarker == "" {
			break
		}
		marker = page.NextMarker
	}

	require.Len(t, collected, total)
	for i, key := range collected {
		assert.Equal(t, fmt.Sprintf("/page/%02d", i), key, "keys must arrive in order across pages")
	}
}

func testListEmpty(t *testing.T, factory StoreFactory) {
	store := factory(t)

	page, err := store.List(t.Context(), kv.ListOptions{Prefix: "/void/"})
	require.NoError(t, err)
	assert.Empty(t, page.Keys)
	assert.Empty(t, page.NextMarker)
}

func testHealthCheck(t *testing.T, factory StoreFactory) {
	store := factory(t)
	require.NoError(t, store.HealthCheck(t.Context()))
}
