package fs

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/kvfs/internal/telemetry"
)

// Stat returns the metadata record for a path. The root reports a
// synthesized directory record when its metadata was never persisted, so
// a fresh store is browsable before the first EnsureRoot.
func (f *FileSystem) Stat(ctx context.Context, fsPath string) (meta *Metadata, err error) {
	const op = "stat"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSStat, fsPath)
	start := time.Now()
	defer func() { f.finish(ctx, span, op, start, err) }()

	normalized, err := NormalizePath(fsPath)
	if err != nil {
		return nil, opError(op, fsPath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, opError(op, normalized, err)
	}

	meta, err = f.meta.Get(ctx, normalized)
	if err != nil {
		if normalized == RootPath && errors.Is(err, ErrNotFound) {
			return newDirMetadata(f.identity, time.Unix(0, 0)), nil
		}
		return nil, opError(op, normalized, err)
	}
	return meta, nil
}
