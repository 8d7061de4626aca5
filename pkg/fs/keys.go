package fs

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ============================================================================
// Key Namespace
// ============================================================================
//
// Every filesystem entity maps onto flat store keys derived from its path:
//
//	/docs/report.txt.__meta__      metadata record
//	/docs/report.txt.__chunk__0    first content chunk
//	/docs/report.txt.__chunk__1    second content chunk
//	__root__.__meta__              metadata record of the root directory
//
// The root key is a reserved literal: normalized paths always begin with "/",
// so no derived key can ever collide with it. The suffixes are interop
// constants shared with any other implementation using the same store.

const (
	// MetadataSuffix is appended to a path to form its metadata key.
	MetadataSuffix = ".__meta__"

	// ChunkSuffix is appended to a path, followed by the decimal chunk
	// index, to form a chunk key.
	ChunkSuffix = ".__chunk__"

	// RootPath is the canonical path of the filesystem root.
	RootPath = "/"

	// rootMetadataKey is the reserved metadata key for the root directory.
	rootMetadataKey = "__root__" + MetadataSuffix
)

// MetadataKey derives the metadata key for a normalized path.
func MetadataKey(fsPath string) string {
	if fsPath == RootPath {
		return rootMetadataKey
	}
	return fsPath + MetadataSuffix
}

// ChunkKey derives the key of one content chunk. Indices are decimal,
// 0-based, without leading zeros.
func ChunkKey(fsPath string, index uint32) string {
	return fsPath + ChunkSuffix + strconv.FormatUint(uint64(index), 10)
}

// ChunkKeyPrefix derives the common prefix of all chunk keys of a path,
// used for cascading deletes.
func ChunkKeyPrefix(fsPath string) string {
	return fsPath + ChunkSuffix
}

// NormalizePath validates a caller-supplied path and returns its canonical
// form. Canonical paths start with "/", contain no empty, "." or ".."
// segments, and carry no trailing slash (except the root itself).
//
// The reserved suffixes are forbidden inside path segments: a path like
// /a/x.__meta__ would collide with the derived key space of /a/x.
func NormalizePath(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty path: %w", ErrInvalidArgument)
	}
	if !strings.HasPrefix(raw, "/") {
		return "", fmt.Errorf("path %q is not absolute: %w", raw, ErrInvalidArgument)
	}
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("path contains NUL byte: %w", ErrInvalidArgument)
	}

	for _, segment := range strings.Split(raw, "/") {
		switch segment {
		case "", ".":
			// Collapsed by path.Clean below.
		case "..":
			return "", fmt.Errorf("path %q contains a parent segment: %w", raw, ErrInvalidArgument)
		default:
			if strings.Contains(segment, MetadataSuffix) || strings.Contains(segment, ChunkSuffix) {
				return "", fmt.Errorf("path segment %q uses a reserved suffix: %w", segment, ErrInvalidArgument)
			}
		}
	}

	return path.Clean(raw), nil
}

// descendantPrefix returns the prefix every descendant key of a directory
// path starts with.
func descendantPrefix(dirPath string) string {
	if dirPath == RootPath {
		return RootPath
	}
	return dirPath + "/"
}
