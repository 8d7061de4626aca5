package fs

import (
	"time"

	"github.com/marmos91/kvfs/pkg/fs/chunk"
)

// ============================================================================
// Mode Bits
// ============================================================================

// POSIX file-type bits. The layer only branches on directory vs regular file;
// the remaining mode bits are stored and returned untouched.
const (
	// ModeTypeMask extracts the file-type bits from a mode (S_IFMT).
	ModeTypeMask uint32 = 0o170000

	// ModeDirectory marks a directory (S_IFDIR).
	ModeDirectory uint32 = 0o040000

	// ModeRegular marks a regular file (S_IFREG).
	ModeRegular uint32 = 0o100000

	// DefaultFileMode is used for files created implicitly by a write.
	DefaultFileMode = ModeRegular | 0o644

	// DefaultDirMode is used for directories created by Mkdir.
	DefaultDirMode = ModeDirectory | 0o755
)

// Identity supplies the owner identifiers stamped onto newly created
// metadata records. Injected from configuration, never hardcoded.
type Identity struct {
	UID uint32
	GID uint32
}

// ============================================================================
// Metadata Record
// ============================================================================

// Metadata is the side-band record kept for every file and directory.
//
// The wire field names and integer encodings are an interop contract shared
// with any other implementation using the same store. Timestamps are Unix
// seconds. NumChunks is optional on the wire (older records omit it) and is
// recomputed from Size after decoding; it is never trusted when it disagrees.
type Metadata struct {
	// Mode holds the file-type and permission bits.
	Mode uint32 `json:"mode" cbor:"mode"`

	// UID and GID are the owner identifiers (opaque to this layer).
	UID uint32 `json:"uid" cbor:"uid"`
	GID uint32 `json:"gid" cbor:"gid"`

	// Size is the logical byte length. Directories are always 0.
	Size uint64 `json:"size" cbor:"size"`

	// Atime, Mtime and Ctime are Unix timestamps in seconds.
	Atime int64 `json:"atime" cbor:"atime"`
	Mtime int64 `json:"mtime" cbor:"mtime"`
	Ctime int64 `json:"ctime" cbor:"ctime"`

	// NumChunks is ceil(Size/chunk.Size), maintained on every write.
	NumChunks uint32 `json:"num_chunks" cbor:"num_chunks"`
}

// IsDir reports whether the record describes a directory.
func (m *Metadata) IsDir() bool {
	return m.Mode&ModeTypeMask == ModeDirectory
}

// IsRegular reports whether the record describes a regular file.
func (m *Metadata) IsRegular() bool {
	return m.Mode&ModeTypeMask == ModeRegular
}

// normalize recomputes derived state after decoding. Stored chunk counts are
// never trusted: older records omit the field entirely and nothing stops an
// out-of-date writer from leaving a stale value behind.
func (m *Metadata) normalize() {
	m.NumChunks = chunk.Count(m.Size)
}

// newFileMetadata builds the record for a file created implicitly by a write.
func newFileMetadata(id Identity, now time.Time) *Metadata {
	ts := now.Unix()
	return &Metadata{
		Mode:  DefaultFileMode,
		UID:   id.UID,
		GID:   id.GID,
		Size:  0,
		Atime: ts,
		Mtime: ts,
		Ctime: ts,
	}
}

// newDirMetadata builds the record for a directory created by Mkdir.
func newDirMetadata(id Identity, now time.Time) *Metadata {
	ts := now.Unix()
	return &Metadata{
		Mode:  DefaultDirMode,
		UID:   id.UID,
		GID:   id.GID,
		Size:  0,
		Atime: ts,
		Mtime: ts,
		Ctime: ts,
	}
}
