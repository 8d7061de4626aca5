package fs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/fs/chunk"
)

// WriteRange writes data at the given byte offset, creating the file on
// first write. Every affected chunk is updated read-modify-write in
// ascending index order, so bytes outside the written range survive.
// Writing past the current end extends the file; the skipped region is
// sparse and reads back as zeros.
//
// A zero-length write is a no-op that only guarantees the metadata record
// exists. It creates an empty file but never touches an existing one.
//
// Any chunk failure aborts the operation with that error. A metadata
// failure after the chunks were stored is reported distinctly: the store
// then holds chunk content ahead of the recorded size until a later write
// succeeds.
func (f *FileSystem) WriteRange(ctx context.Context, fsPath string, offset uint64, data []byte) (n int, err error) {
	const op = "write"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSWrite, fsPath,
		telemetry.FSOffset(offset), telemetry.FSSize(uint64(len(data))))
	start := time.Now()
	defer func() { f.finish(ctx, span, op, start, err) }()

	normalized, err := NormalizePath(fsPath)
	if err != nil {
		return 0, opError(op, fsPath, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, opError(op, normalized, err)
	}
	if offset > math.MaxUint64-uint64(len(data)) {
		return 0, opError(op, normalized, fmt.Errorf("%w: offset %d overflows with %d bytes", ErrInvalidArgument, offset, len(data)))
	}

	stamp := f.now()
	created := false

	meta, err := f.meta.Get(ctx, normalized)
	switch {
	case errors.Is(err, ErrNotFound):
		meta = newFileMetadata(f.identity, stamp)
		created = true
	case err != nil:
		return 0, opError(op, normalized, err)
	case meta.IsDir():
		return 0, opError(op, normalized, ErrIsDirectory)
	}

	if len(data) == 0 {
		if created {
			if err := f.meta.Put(ctx, normalized, meta); err != nil {
				return 0, opError(op, normalized, err)
			}
		}
		return 0, nil
	}

	for s := range chunk.Slices(offset, uint64(len(data))) {
		existing, _, err := f.chunks.Get(ctx, normalized, s.Index)
		if err != nil {
			return 0, opError(op, normalized, err)
		}

		// Grow to cover the write window; allocation zero-fills any gap
		// between the old chunk end and the window start. Bytes the old
		// chunk held past the window survive the initial copy.
		end := int(s.Offset) + int(s.Length)
		buf := existing
		if len(buf) < end {
			grown := make([]byte, end)
			copy(grown, buf)
			buf = grown
		}
		copy(buf[s.Offset:end], data[s.BufOffset:s.BufOffset+int(s.Length)])

		if err := f.chunks.Put(ctx, normalized, s.Index, buf); err != nil {
			return 0, opError(op, normalized, err)
		}
	}

	if writeEnd := offset + uint64(len(data)); writeEnd > meta.Size {
		meta.Size = writeEnd
	}
	meta.Atime = stamp.Unix()
	meta.Mtime = stamp.Unix()

	if err := f.meta.Put(ctx, normalized, meta); err != nil {
		return 0, opError(op, normalized, fmt.Errorf("chunks written but metadata update failed: %w", err))
	}

	f.recordBytes(op, len(data))
	logger.DebugCtx(ctx, "range write complete",
		logger.Path(normalized),
		logger.KeyOffset, offset,
		logger.KeyBytesWritten, len(data),
		logger.KeySize, meta.Size,
		logger.KeyChunks, meta.NumChunks)
	return len(data), nil
}
