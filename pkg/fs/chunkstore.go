package fs

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/kvfs/pkg/fs/chunk"
	"github.com/marmos91/kvfs/pkg/kv"
)

// ChunkStore reads and writes fixed-size file chunks keyed by path and
// ordinal. Values never exceed chunk.Size, keeping them well inside any
// backend's value limit.
type ChunkStore struct {
	store kv.Store
}

// NewChunkStore creates a chunk store over the given key-value store.
func NewChunkStore(store kv.Store) *ChunkStore {
	return &ChunkStore{store: store}
}

// Get fetches a single chunk. A chunk absent from the store is not an
// error: sparse regions simply have no record, so the second return value
// reports presence and callers substitute zeros when it is false.
func (s *ChunkStore) Get(ctx context.Context, fsPath string, index uint32) ([]byte, bool, error) {
	data, err := s.store.Get(ctx, ChunkKey(fsPath, index))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load chunk %d: %w", index, err)
	}
	return data, true, nil
}

// Put stores a single chunk, overwriting any previous value. The payload
// must not exceed chunk.Size; short final chunks are stored short.
func (s *ChunkStore) Put(ctx context.Context, fsPath string, index uint32, data []byte) error {
	if len(data) > chunk.Size {
		return fmt.Errorf("%w: chunk payload %d exceeds %d bytes", ErrInvalidArgument, len(data), chunk.Size)
	}
	if err := s.store.Put(ctx, ChunkKey(fsPath, index), data); err != nil {
		return fmt.Errorf("failed to store chunk %d: %w", index, err)
	}
	return nil
}

// Delete removes a single chunk. Deleting an absent chunk is a no-op.
func (s *ChunkStore) Delete(ctx context.Context, fsPath string, index uint32) error {
	if err := s.store.Delete(ctx, ChunkKey(fsPath, index)); err != nil {
		return fmt.Errorf("failed to delete chunk %d: %w", index, err)
	}
	return nil
}
