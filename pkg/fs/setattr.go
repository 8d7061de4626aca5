package fs

import (
	"context"
	"time"

	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/fs/chunk"
)

// SetAttr describes attribute changes for a path. Nil fields are left
// unchanged.
type SetAttr struct {
	Mode  *uint32
	UID   *uint32
	GID   *uint32
	Atime *int64
	Mtime *int64
	Size  *uint64
}

// SetAttr applies attribute changes and returns the updated record. Mode
// changes touch only the permission bits; the type bits are immutable.
// Setting Size truncates a regular file, which either grows it sparsely
// or shrinks it by cutting the last surviving chunk and deleting the keys
// past it. Ctime advances whenever anything changed.
func (f *FileSystem) SetAttr(ctx context.Context, fsPath string, attr SetAttr) (meta *Metadata, err error) {
	const op = "setattr"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSSetAttr, fsPath)
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
		return nil, opError(op, normalized, err)
	}

	stamp := f.now()
	changed := false

	if attr.Mode != nil {
		meta.Mode = (meta.Mode & ModeTypeMask) | (*attr.Mode &^ ModeTypeMask)
		changed = true
	}
	if attr.UID != nil {
		meta.UID = *attr.UID
		changed = true
	}
	if attr.GID != nil {
		meta.GID = *attr.GID
		changed = true
	}
	if attr.Atime != nil {
		meta.Atime = *attr.Atime
		changed = true
	}
	if attr.Mtime != nil {
		meta.Mtime = *attr.Mtime
		changed = true
	}

	if attr.Size != nil {
		if meta.IsDir() {
			return nil, opError(op, normalized, ErrIsDirectory)
		}
		if *attr.Size != meta.Size {
			if err := f.truncate(ctx, normalized, meta, *attr.Size); err != nil {
				return nil, opError(op, normalized, err)
			}
			meta.Mtime = stamp.Unix()
			changed = true
		}
	}

	if !changed {
		return meta, nil
	}

	meta.Ctime = stamp.Unix()
	if err := f.meta.Put(ctx, normalized, meta); err != nil {
		return nil, opError(op, normalized, err)
	}
	return meta, nil
}

// truncate adjusts a file's content to newSize and updates meta.Size in
// place. Growth writes nothing: the extension is sparse. Shrinking cuts
// the last surviving chunk to length and deletes every chunk past it. The
// caller persists the metadata afterwards.
func (f *FileSystem) truncate(ctx context.Context, normalized string, meta *Metadata, newSize uint64) error {
	if newSize > meta.Size {
		meta.Size = newSize
		return nil
	}

	oldChunks := meta.NumChunks
	newChunks := chunk.Count(newSize)

	if newSize > 0 {
		last := newChunks - 1
		chunkStart, _ := chunk.Bounds(last)
		keep := int(newSize - chunkStart)

		data, ok, err := f.chunks.Get(ctx, normalized, last)
		if err != nil {
			return err
		}
		if ok && len(data) > keep {
			if err := f.chunks.Put(ctx, normalized, last, data[:keep]); err != nil {
				return err
			}
		}
	}

	for index := newChunks; index < oldChunks; index++ {
		if err := f.chunks.Delete(ctx, normalized, index); err != nil {
			return err
		}
	}

	meta.Size = newSize
	return nil
}
