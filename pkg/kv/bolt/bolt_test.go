package bolt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/kvfs/pkg/kv"
	"github.com/marmos91/kvfs/pkg/kv/bolt"
	"github.com/marmos91/kvfs/pkg/kv/kvtest"
)

func newTestStore(t *testing.T) *bolt.Store {
	t.Helper()

	store, err := bolt.New(bolt.Config{
		Path: filepath.Join(t.TempDir(), "kvfs.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConformance(t *testing.T) {
	kvtest.RunConformanceSuite(t, func(t *testing.T) kv.Store {
		return newTestStore(t)
	})
}

func TestPathRequired(t *testing.T) {
	_, err := bolt.New(bolt.Config{})
	require.Error(t, err)
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvfs.db")
	ctx := t.Context()

	store, err := bolt.New(bolt.Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "/persisted", []byte("survives reopen")))
	require.NoError(t, store.Close())

	reopened, err := bolt.New(bolt.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.Get(ctx, "/persisted")
	require.NoError(t, err)
	require.Equal(t, []byte("survives reopen"), got)
}
