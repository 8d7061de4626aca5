package fs

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/kvfs/pkg/kv"
)

// MetadataStore loads and stores metadata records. It owns the record
// serialization; raw key deletion stays with the delete operation.
type MetadataStore struct {
	store kv.Store
	codec Codec
}

// NewMetadataStore creates a metadata store over the given key-value store.
func NewMetadataStore(store kv.Store, codec Codec) *MetadataStore {
	return &MetadataStore{store: store, codec: codec}
}

// Get fetches and decodes the metadata record for a normalized path.
// Returns ErrNotFound when no record exists and ErrCorruptMetadata when the
// stored value fails to decode. The returned record is normalized: NumChunks
// is recomputed from Size, regardless of what the stored value claimed.
func (s *MetadataStore) Get(ctx context.Context, fsPath string) (*Metadata, error) {
	raw, err := s.store.Get(ctx, MetadataKey(fsPath))
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	meta := &Metadata{}
	if err := s.codec.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}

	meta.normalize()
	return meta, nil
}

// Put serializes and stores the record, overwriting unconditionally. There
// is no optimistic concurrency: the last writer wins.
func (s *MetadataStore) Put(ctx context.Context, fsPath string, meta *Metadata) error {
	meta.normalize()

	raw, err := s.codec.Marshal(meta)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, MetadataKey(fsPath), raw); err != nil {
		return fmt.Errorf("failed to store metadata: %w", err)
	}
	return nil
}
