package fs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/kv"
)

// deleteConcurrency bounds the parallel key deletions of a cascade delete.
const deleteConcurrency = 8

// Delete removes a file together with all of its chunks, or an empty
// directory. Deleting the root is rejected. A directory with any key
// below it fails with ErrDirectoryNotEmpty.
//
// Missing or corrupt metadata is tolerated: cleanup proceeds as for a
// file, so half-written state can always be removed. Chunk deletions run
// concurrently; the first failure is the one reported, and deletion is
// not atomic, so a failed call can leave some keys removed.
func (f *FileSystem) Delete(ctx context.Context, fsPath string) (err error) {
	const op = "delete"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSDelete, fsPath)
	start := time.Now()
	defer func() { f.finish(ctx, span, op, start, err) }()

	normalized, err := NormalizePath(fsPath)
	if err != nil {
		return opError(op, fsPath, err)
	}
	if normalized == RootPath {
		return opError(op, normalized, fmt.Errorf("%w: cannot delete root", ErrInvalidArgument))
	}
	if err := ctx.Err(); err != nil {
		return opError(op, normalized, err)
	}

	meta, err := f.meta.Get(ctx, normalized)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrCorruptMetadata) {
		return opError(op, normalized, err)
	}

	if meta != nil && meta.IsDir() {
		page, err := f.store.List(ctx, kv.ListOptions{Prefix: descendantPrefix(normalized), Limit: 1})
		if err != nil {
			return opError(op, normalized, fmt.Errorf("failed to scan directory: %w", err))
		}
		if len(page.Keys) > 0 {
			return opError(op, normalized, ErrDirectoryNotEmpty)
		}
		if err := f.store.Delete(ctx, MetadataKey(normalized)); err != nil {
			return opError(op, normalized, fmt.Errorf("failed to delete metadata: %w", err))
		}
		logger.DebugCtx(ctx, "directory deleted", logger.Path(normalized))
		return nil
	}

	// File, or unreadable metadata: collect the metadata key plus every
	// chunk key found under the chunk prefix.
	keys := []string{MetadataKey(normalized)}
	prefix := ChunkKeyPrefix(normalized)
	marker := ""
	for {
		page, err := f.store.List(ctx, kv.ListOptions{Prefix: prefix, Marker: marker})
		if err != nil {
			return opError(op, normalized, fmt.Errorf("failed to scan chunks: %w", err))
		}
		keys = append(keys, page.Keys...)
		if page.NextMarker == "" {
			break
		}
		marker = page.NextMarker
	}

	// Outstanding deletions run to completion even after a failure; the
	// first error wins.
	var g errgroup.Group
	g.SetLimit(deleteConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			return f.store.Delete(ctx, key)
		})
	}
	if err := g.Wait(); err != nil {
		return opError(op, normalized, fmt.Errorf("failed to delete keys: %w", err))
	}

	logger.DebugCtx(ctx, "file deleted", logger.Path(normalized), logger.KeyChunks, len(keys)-1)
	return nil
}
