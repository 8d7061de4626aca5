package fs

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the filesystem layer can return.
// Operations wrap these in *Error together with the operation name and path;
// callers branch with errors.Is.
var (
	// ErrInvalidArgument indicates a missing or malformed path, offset, or size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates metadata was absent when presence was required.
	ErrNotFound = errors.New("not found")

	// ErrIsDirectory indicates a file operation was attempted on a directory.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotADirectory indicates a directory operation was attempted on a file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrConflict indicates a directory create over an existing non-directory.
	ErrConflict = errors.New("conflict")

	// ErrDirectoryNotEmpty indicates a delete on a directory that still has
	// descendant keys.
	ErrDirectoryNotEmpty = errors.New("directory not empty")

	// ErrCorruptMetadata indicates a stored metadata value failed to decode.
	ErrCorruptMetadata = errors.New("corrupt metadata")
)

// Error is the typed error returned by filesystem operations. It carries the
// operation name and the path it failed on, and wraps either one of the
// sentinel errors above or an underlying store error.
type Error struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the wrapped error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// opError wraps err with operation and path context. Errors already carrying
// that context pass through untouched so nesting stays flat.
func opError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return err
	}
	return &Error{Op: op, Path: path, Err: err}
}
