package fs

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/internal/telemetry"
)

// Mkdir creates a directory. Creating a directory that already exists
// succeeds without modifying it; creating one over an existing file fails
// with ErrConflict. Parents are not required to exist, since containment
// is lexical; use MkdirAll to materialize the whole chain.
func (f *FileSystem) Mkdir(ctx context.Context, fsPath string) (err error) {
	const op = "mkdir"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSMkdir, fsPath)
	start := time.Now()
	defer func() { f.finish(ctx, span, op, start, err) }()

	normalized, err := NormalizePath(fsPath)
	if err != nil {
		return opError(op, fsPath, err)
	}
	if err := ctx.Err(); err != nil {
		return opError(op, normalized, err)
	}
	if normalized == RootPath {
		return nil
	}

	meta, err := f.meta.Get(ctx, normalized)
	switch {
	case err == nil:
		if meta.IsDir() {
			return nil
		}
		return opError(op, normalized, ErrConflict)
	case !errors.Is(err, ErrNotFound):
		return opError(op, normalized, err)
	}

	if err := f.meta.Put(ctx, normalized, newDirMetadata(f.identity, f.now())); err != nil {
		return opError(op, normalized, err)
	}
	logger.DebugCtx(ctx, "directory created", logger.Path(normalized))
	return nil
}

// MkdirAll creates a directory along with any missing parents, root-down,
// so a failure still leaves a usable prefix chain. Existing directories
// along the way are left untouched.
func (f *FileSystem) MkdirAll(ctx context.Context, fsPath string) error {
	normalized, err := NormalizePath(fsPath)
	if err != nil {
		return opError("mkdir", fsPath, err)
	}
	for _, dir := range ancestorChain(normalized) {
		if err := f.Mkdir(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

// EnsureRoot persists the root directory metadata record if it is missing.
// Safe to call at every startup.
func (f *FileSystem) EnsureRoot(ctx context.Context) error {
	const op = "ensure_root"

	_, err := f.meta.Get(ctx, RootPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return opError(op, RootPath, err)
	}

	if err := f.meta.Put(ctx, RootPath, newDirMetadata(f.identity, f.now())); err != nil {
		return opError(op, RootPath, err)
	}
	logger.Debug("root metadata created")
	return nil
}

// ancestorChain enumerates a normalized path and its ancestors, shallow
// first, excluding the root: "/a/b/c" yields "/a", "/a/b", "/a/b/c".
func ancestorChain(normalized string) []string {
	if normalized == RootPath {
		return nil
	}
	var chain []string
	for i := 1; i < len(normalized); i++ {
		if normalized[i] == '/' {
			chain = append(chain, normalized[:i])
		}
	}
	return append(chain, normalized)
}
