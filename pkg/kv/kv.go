// Package kv defines the flat key-value store surface that the filesystem
// emulation layer is built on.
//
// A Store holds opaque byte values under string keys and enforces a maximum
// value size. It has no notion of directories, files, or chunks; all of that
// structure is derived lexically by higher layers from key prefixes.
// Implementations live in subpackages (memory, badger, bolt, s3) and must all
// pass the shared conformance suite in kvtest.
//
// Listing is marker-paginated: a page of keys in lexicographic order, plus a
// marker to resume from. Delimiter-style listing is deliberately not part of
// this interface; directory grouping is done lexically by the callers.
package kv

import (
	"context"
	"errors"
)

// DefaultMaxValueSize is the value-size bound applied by stores when their
// configuration does not set one. Values larger than the bound are rejected
// with ErrValueTooLarge.
const DefaultMaxValueSize = 4096

// DefaultPageSize is the listing page size used when ListOptions.Limit is
// not positive.
const DefaultPageSize = 1000

var (
	// ErrKeyNotFound indicates the requested key does not exist.
	// Callers that treat absence as a valid state (sparse chunks) must check
	// for this error explicitly.
	ErrKeyNotFound = errors.New("key not found")

	// ErrValueTooLarge indicates a Put exceeded the store's value-size bound.
	ErrValueTooLarge = errors.New("value too large")

	// ErrStoreClosed indicates an operation was attempted after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// ListOptions controls a single page of a key listing.
type ListOptions struct {
	// Prefix restricts the listing to keys beginning with this string.
	Prefix string

	// Marker resumes a paginated listing: only keys lexicographically
	// greater than Marker are returned. Empty starts from the beginning.
	Marker string

	// Limit caps the number of keys in the returned page.
	// Values <= 0 use DefaultPageSize.
	Limit int
}

// Page is one page of a key listing.
type Page struct {
	// Keys are the matching keys in lexicographic order.
	Keys []string

	// NextMarker is non-empty when more keys remain; pass it as
	// ListOptions.Marker to fetch the next page.
	NextMarker string
}

// Store is a flat, size-limited key-value store.
//
// Values are stored and returned byte-for-byte; implementations must be
// binary-safe. Get on an absent key returns ErrKeyNotFound. Put overwrites
// unconditionally. Delete is idempotent: deleting an absent key succeeds.
//
// Implementations must be safe for concurrent use. There is no cross-call
// concurrency control: overlapping writers to the same key race with
// last-write-wins semantics.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any existing value.
	// Returns ErrValueTooLarge when value exceeds the store's bound.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op success.
	Delete(ctx context.Context, key string) error

	// List returns one page of keys matching opts.
	List(ctx context.Context, opts ListOptions) (Page, error)

	// HealthCheck verifies the backing storage is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources. Operations after Close return
	// ErrStoreClosed.
	Close() error
}
