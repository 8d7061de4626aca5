package fs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/kv"
)

// Entry is a single directory listing entry.
type Entry struct {
	Name  string
	IsDir bool
}

// ListOptions controls directory listing behavior.
type ListOptions struct {
	// ResolveTypes fetches metadata for direct children whose kind cannot
	// be inferred from the key layout alone. See List.
	ResolveTypes bool
}

// List returns the direct children of a directory, one entry per name,
// sorted by name.
//
// Classification is inferred from the key layout. Any key nested more than
// one level below the directory marks its first segment as a
// subdirectory. A direct child is recognized by its metadata key and
// reported as a file by default, so a childless subdirectory is
// indistinguishable from a file at this level. Set ResolveTypes to spend
// one metadata read per such entry and classify it exactly.
//
// Listing a path with no metadata record is not an error: directories
// exist implicitly whenever keys live under them.
func (f *FileSystem) List(ctx context.Context, fsPath string, opts ListOptions) (entries []Entry, err error) {
	const op = "list"
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanFSList, fsPath)
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
	switch {
	case err == nil:
		if !meta.IsDir() {
			return nil, opError(op, normalized, ErrNotADirectory)
		}
	case !errors.Is(err, ErrNotFound):
		return nil, opError(op, normalized, err)
	}

	prefix := descendantPrefix(normalized)
	seen := make(map[string]int)
	entries = []Entry{}

	marker := ""
	for {
		page, err := f.store.List(ctx, kv.ListOptions{Prefix: prefix, Marker: marker})
		if err != nil {
			return nil, opError(op, normalized, fmt.Errorf("failed to scan directory: %w", err))
		}

		for _, key := range page.Keys {
			rest := key[len(prefix):]

			if i := strings.IndexByte(rest, '/'); i >= 0 {
				// A deeper key proves its first segment is a directory.
				name := rest[:i]
				if idx, ok := seen[name]; ok {
					entries[idx].IsDir = true
				} else {
					seen[name] = len(entries)
					entries = append(entries, Entry{Name: name, IsDir: true})
				}
				continue
			}

			// Direct children surface through their metadata key. Bare
			// chunk keys are skipped: the owning file's metadata key
			// lists it.
			name, ok := strings.CutSuffix(rest, MetadataSuffix)
			if !ok || name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = len(entries)
			entries = append(entries, Entry{Name: name})
		}

		if page.NextMarker == "" {
			break
		}
		marker = page.NextMarker
	}

	if opts.ResolveTypes {
		for i := range entries {
			if entries[i].IsDir {
				continue
			}
			childMeta, err := f.meta.Get(ctx, childPath(normalized, entries[i].Name))
			if err != nil {
				if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruptMetadata) {
					continue
				}
				return nil, opError(op, normalized, err)
			}
			entries[i].IsDir = childMeta.IsDir()
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

// childPath joins a direct child name onto a normalized directory path.
func childPath(normalized, name string) string {
	if normalized == RootPath {
		return RootPath + name
	}
	return normalized + "/" + name
}
