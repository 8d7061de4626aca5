package fs

import (
	"context"
	"time"

	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/fs/chunk"
)

// ReadRange reads up to size bytes starting at offset. Reads past the end
// of the file are clipped; an offset at or past the end returns an empty
// slice. Chunks that were never written read back as zeros, so the result
// always has the full clipped length. Reading is side-effect free and
// idempotent.
func (f *FileSystem) ReadRange(ctx context.Context, fsPath string, offset, size uint64) (data []byte, err error) {
	const op = "read"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSRead, fsPath,
		telemetry.FSOffset(offset), telemetry.FSSize(size))
	start := time.Now()
	defer func() { f.finish(ctx, span, op, start, err) }()

	normalized, err := NormalizePath(fsPath)
	if err != nil {
		return nil, opError(op, fsPath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, opError(op, normalized, err)
	}

	meta, err := f.meta.Get(ctx, normalized)
	if err != nil {
		return nil, opError(op, normalized, err)
	}
	if meta.IsDir() {
		return nil, opError(op, normalized, ErrIsDirectory)
	}

	if offset >= meta.Size {
		return []byte{}, nil
	}
	if size > meta.Size-offset {
		size = meta.Size - offset
	}

	// Allocate the full clipped length up front: sparse chunks and short
	// stored chunks leave their region zero-filled.
	out := make([]byte, size)
	for s := range chunk.Slices(offset, size) {
		stored, ok, err := f.chunks.Get(ctx, normalized, s.Index)
		if err != nil {
			return nil, opError(op, normalized, err)
		}
		if ok && int(s.Offset) < len(stored) {
			copy(out[s.BufOffset:s.BufOffset+int(s.Length)], stored[s.Offset:])
		}
	}

	f.recordBytes(op, len(out))
	return out, nil
}
