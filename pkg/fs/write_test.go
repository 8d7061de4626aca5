package fs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/fs/chunk"
	"github.com/marmos91/kvfs/pkg/kv"
	"github.com/marmos91/kvfs/pkg/kv/memory"
)

func TestWriteReadRoundTrip(t *testing.T) {
	sizes := []int{
		1,
		chunk.Size - 1,
		chunk.Size,
		chunk.Size + 1,
		3*chunk.Size + 100,
		10 * chunk.Size,
	}

	for _, size := range sizes {
		t.Run(fmt.Sprintf("%dBytes", size), func(t *testing.T) {
			fsys, _, _ := newTestFS(t)
			ctx := context.Background()

			data := patternData(size)
			n, err := fsys.WriteRange(ctx, "/f.bin", 0, data)
			require.NoError(t, err)
			assert.Equal(t, size, n)

			got, err := fsys.ReadRange(ctx, "/f.bin", 0, uint64(size))
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestChunkBoundaryExactness(t *testing.T) {
	fsys, store, _ := newTestFS(t)
	ctx := context.Background()

	const k = 3
	data := patternData(k * chunk.Size)
	_, err := fsys.WriteRange(ctx, "/exact.bin", 0, data)
	require.NoError(t, err)

	meta, err := fsys.Stat(ctx, "/exact.bin")
	require.NoError(t, err)
	assert.EqualValues(t, k*chunk.Size, meta.Size)
	assert.EqualValues(t, k, meta.NumChunks)

	// Exactly k chunk keys, each holding a full chunk.
	for i := uint32(0); i < k; i++ {
		value, err := store.Get(ctx, fs.ChunkKey("/exact.bin", i))
		require.NoError(t, err, "chunk %d", i)
		assert.Len(t, value, chunk.Size, "chunk %d", i)
	}
	_, err = store.Get(ctx, fs.ChunkKey("/exact.bin", k))
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestPartialOverwritePreservesBytes(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	original := make([]byte, 2*chunk.Size)
	for i := range original {
		original[i] = 'A'
	}
	_, err := fsys.WriteRange(ctx, "/partial.bin", 0, original)
	require.NoError(t, err)

	// Overwrite 3 bytes straddling the first chunk boundary.
	patch := []byte("XYZ")
	offset := uint64(chunk.Size - 1)
	n, err := fsys.WriteRange(ctx, "/partial.bin", offset, patch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := fsys.ReadRange(ctx, "/partial.bin", 0, uint64(len(original)))
	require.NoError(t, err)

	want := append([]byte{}, original...)
	copy(want[offset:], patch)
	assert.Equal(t, want, got)
}

func TestSparseWriteSkipsInteriorChunks(t *testing.T) {
	fsys, store, _ := newTestFS(t)
	ctx := context.Background()

	tail := patternData(10)
	offset := uint64(3 * chunk.Size)
	_, err := fsys.WriteRange(ctx, "/sparse.bin", offset, tail)
	require.NoError(t, err)

	meta, err := fsys.Stat(ctx, "/sparse.bin")
	require.NoError(t, err)
	assert.Equal(t, offset+10, meta.Size)
	assert.EqualValues(t, 4, meta.NumChunks)

	// The skipped chunks are never materialized.
	for i := uint32(0); i < 3; i++ {
		_, err := store.Get(ctx, fs.ChunkKey("/sparse.bin", i))
		assert.ErrorIs(t, err, kv.ErrKeyNotFound, "chunk %d", i)
	}

	got, err := fsys.ReadRange(ctx, "/sparse.bin", 0, meta.Size)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, offset), got[:offset])
	assert.Equal(t, tail, got[offset:])
}

func TestOverwriteNeverShrinks(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	_, err := fsys.WriteRange(ctx, "/grow.bin", 0, patternData(2*chunk.Size))
	require.NoError(t, err)

	_, err = fsys.WriteRange(ctx, "/grow.bin", 0, []byte("short"))
	require.NoError(t, err)

	meta, err := fsys.Stat(ctx, "/grow.bin")
	require.NoError(t, err)
	assert.EqualValues(t, 2*chunk.Size, meta.Size)
}

func TestZeroLengthWrite(t *testing.T) {
	t.Run("CreatesEmptyFile", func(t *testing.T) {
		fsys, store, clock := newTestFS(t)
		ctx := context.Background()

		n, err := fsys.WriteRange(ctx, "/empty.txt", 0, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		meta, err := fsys.Stat(ctx, "/empty.txt")
		require.NoError(t, err)
		assert.True(t, meta.IsRegular())
		assert.Zero(t, meta.Size)
		assert.Zero(t, meta.NumChunks)
		assert.Equal(t, clock.Unix(), meta.Ctime)

		// Only the metadata record exists.
		assert.Equal(t, 1, store.Len())
	})

	t.Run("ExistingFileUntouched", func(t *testing.T) {
		fsys, _, clock := newTestFS(t)
		ctx := context.Background()

		_, err := fsys.WriteRange(ctx, "/kept.txt", 0, []byte("hello"))
		require.NoError(t, err)
		before, err := fsys.Stat(ctx, "/kept.txt")
		require.NoError(t, err)

		clock.Advance(10 * time.Minute)
		_, err = fsys.WriteRange(ctx, "/kept.txt", 0, nil)
		require.NoError(t, err)

		after, err := fsys.Stat(ctx, "/kept.txt")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestWriteToDirectoryFails(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	require.NoError(t, fsys.Mkdir(ctx, "/d"))

	_, err := fsys.WriteRange(ctx, "/d", 0, []byte("x"))
	assert.ErrorIs(t, err, fs.ErrIsDirectory)

	_, err = fsys.WriteRange(ctx, "/d", 0, nil)
	assert.ErrorIs(t, err, fs.ErrIsDirectory)
}

func TestWriteTimestamps(t *testing.T) {
	fsys, _, clock := newTestFS(t)
	ctx := context.Background()

	created := clock.Unix()
	_, err := fsys.WriteRange(ctx, "/t.bin", 0, []byte("v1"))
	require.NoError(t, err)

	meta, err := fsys.Stat(ctx, "/t.bin")
	require.NoError(t, err)
	assert.Equal(t, created, meta.Ctime)
	assert.Equal(t, created, meta.Mtime)
	assert.Equal(t, created, meta.Atime)

	clock.Advance(30 * time.Minute)
	_, err = fsys.WriteRange(ctx, "/t.bin", 0, []byte("v2"))
	require.NoError(t, err)

	meta, err = fsys.Stat(ctx, "/t.bin")
	require.NoError(t, err)
	assert.Equal(t, created, meta.Ctime, "ctime only changes on creation")
	assert.Equal(t, clock.Unix(), meta.Mtime)
	assert.Equal(t, clock.Unix(), meta.Atime)
}

func TestWriteInvalidPaths(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	for _, path := range []string{"", "relative", "/a/../b", "/bad.__meta__"} {
		_, err := fsys.WriteRange(ctx, path, 0, []byte("x"))
		assert.ErrorIs(t, err, fs.ErrInvalidArgument, "path %q", path)
	}
}

func TestWriteChunkFailureAborts(t *testing.T) {
	inner := memory.New()
	t.Cleanup(func() { _ = inner.Close() })

	boom := errors.New("backend unavailable")
	store := &faultStore{
		Store: inner,
		failPut: func(key string) error {
			if key == fs.ChunkKey("/f.bin", 1) {
				return boom
			}
			return nil
		},
	}
	fsys := fs.New(store)
	ctx := context.Background()

	_, err := fsys.WriteRange(ctx, "/f.bin", 0, patternData(2*chunk.Size))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The metadata record was never written, so the file does not exist.
	_, err = fsys.Stat(ctx, "/f.bin")
	assert.ErrorIs(t, err, fs.ErrNotFound)
}

func TestWriteMetadataFailureReportedDistinctly(t *testing.T) {
	inner := memory.New()
	t.Cleanup(func() { _ = inner.Close() })

	boom := errors.New("backend unavailable")
	store := &faultStore{
		Store: inner,
		failPut: func(key string) error {
			if key == fs.MetadataKey("/f.bin") {
				return boom
			}
			return nil
		},
	}
	fsys := fs.New(store)
	ctx := context.Background()

	_, err := fsys.WriteRange(ctx, "/f.bin", 0, patternData(chunk.Size+5))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chunks written but metadata update failed")

	// The chunks landed; the inconsistency is visible, not hidden.
	_, err = inner.Get(ctx, fs.ChunkKey("/f.bin", 0))
	assert.NoError(t, err)
	_, err = inner.Get(ctx, fs.ChunkKey("/f.bin", 1))
	assert.NoError(t, err)
}
