package fs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/fs/chunk"
)

func TestReadMissingFile(t *testing.T) {
	fsys, _, _ := newTestFS(t)

	_, err := fsys.ReadRange(context.Background(), "/nope.txt", 0, 10)
	assert.ErrorIs(t, err, fs.ErrNotFound)
}

func TestReadDirectoryFails(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	require.NoError(t, fsys.Mkdir(ctx, "/d"))

	_, err := fsys.ReadRange(ctx, "/d", 0, 10)
	assert.ErrorIs(t, err, fs.ErrIsDirectory)
}

func TestReadPastEndReturnsEmpty(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	_, err := fsys.WriteRange(ctx, "/f.bin", 0, patternData(100))
	require.NoError(t, err)

	got, err := fsys.ReadRange(ctx, "/f.bin", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = fsys.ReadRange(ctx, "/f.bin", 5000, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadClipsToFileSize(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	data := patternData(100)
	_, err := fsys.WriteRange(ctx, "/f.bin", 0, data)
	require.NoError(t, err)

	got, err := fsys.ReadRange(ctx, "/f.bin", 50, 1000)
	require.NoError(t, err)
	assert.Equal(t, data[50:], got)
}

func TestSparseReadReturnsZeros(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	// One byte at the start of chunk 4 leaves chunks 0..3 unwritten but
	// below the file size.
	_, err := fsys.WriteRange(ctx, "/s.bin", 4*chunk.Size, []byte{0xFF})
	require.NoError(t, err)

	// A range entirely inside a never-written chunk reads as zeros of the
	// full requested length.
	got, err := fsys.ReadRange(ctx, "/s.bin", chunk.Size, chunk.Size)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, chunk.Size), got)
}

func TestReadShortStoredChunkZeroFills(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	// Chunk 0 holds only 10 bytes; growing the file leaves the rest of
	// the chunk logically zero without rewriting it.
	data := patternData(10)
	_, err := fsys.WriteRange(ctx, "/g.bin", 0, data)
	require.NoError(t, err)

	size := uint64(3000)
	_, err = fsys.SetAttr(ctx, "/g.bin", fs.SetAttr{Size: &size})
	require.NoError(t, err)

	got, err := fsys.ReadRange(ctx, "/g.bin", 0, size)
	require.NoError(t, err)
	require.Len(t, got, int(size))
	assert.Equal(t, data, got[:10])
	assert.Equal(t, make([]byte, size-10), got[10:])

	// An offset beyond the stored bytes but inside the file also reads
	// zeros.
	got, err = fsys.ReadRange(ctx, "/g.bin", 500, 100)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 100), got)
}

func TestReadIsIdempotent(t *testing.T) {
	fsys, store, _ := newTestFS(t)
	ctx := context.Background()

	data := patternData(2*chunk.Size + 17)
	_, err := fsys.WriteRange(ctx, "/i.bin", 0, data)
	require.NoError(t, err)

	keysBefore := store.Len()

	first, err := fsys.ReadRange(ctx, "/i.bin", 100, 3000)
	require.NoError(t, err)
	second, err := fsys.ReadRange(ctx, "/i.bin", 100, 3000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, keysBefore, store.Len(), "reading must not mutate the store")
}

func TestReadAtChunkBoundaries(t *testing.T) {
	fsys, _, _ := newTestFS(t)
	ctx := context.Background()

	data := patternData(3 * chunk.Size)
	_, err := fsys.WriteRange(ctx, "/b.bin", 0, data)
	require.NoError(t, err)

	cases := []struct {
		offset uint64
		size   uint64
	}{
		{0, chunk.Size},
		{chunk.Size, chunk.Size},
		{chunk.Size - 1, 2},
		{2*chunk.Size - 1, chunk.Size + 1},
		{0, 3 * chunk.Size},
	}
	for _, tc := range cases {
		got, err := fsys.ReadRange(ctx, "/b.bin", tc.offset, tc.size)
		require.NoError(t, err, "offset %d size %d", tc.offset, tc.size)
		assert.Equal(t, data[tc.offset:tc.offset+tc.size], got, "offset %d size %d", tc.offset, tc.size)
	}
}
