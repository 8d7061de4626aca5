// Package fs emulates a POSIX-like hierarchical filesystem on top of a
// flat key-value store with a small maximum value size.
//
// Files are split into fixed-size chunks, each stored under its own key,
// with a side-band metadata record per path holding mode, ownership, size
// and timestamps. Directories have no native representation in the store:
// containment is purely lexical, inferred from key prefixes. The key
// layout is documented in keys.go and must match bit-for-bit across every
// implementation sharing a store.
//
// Operations are individually atomic at the key level only. There is no
// cross-request concurrency control: two overlapping writers to the same
// path can interleave chunk updates and produce a lost update. Callers
// needing stronger guarantees must serialize writers per path outside this
// package.
package fs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/kv"
)

// Metrics provides observability for filesystem operations.
//
// This interface is optional: a nil sink disables collection with zero
// overhead.
type Metrics interface {
	// ObserveOperation records a completed operation with its duration
	// and outcome.
	ObserveOperation(op string, duration time.Duration, err error)

	// RecordBytes records payload bytes moved by read or write operations.
	RecordBytes(op string, bytes int64)
}

// Option configures a FileSystem.
type Option func(*FileSystem)

// WithIdentity sets the owner stamped onto newly created files and
// directories. Defaults to uid 0, gid 0.
func WithIdentity(id Identity) Option {
	return func(f *FileSystem) { f.identity = id }
}

// WithCodec selects the metadata serialization codec. JSON is the default;
// every implementation sharing a store must use the same codec.
func WithCodec(codec Codec) Option {
	return func(f *FileSystem) { f.codec = codec }
}

// WithClock overrides the timestamp source. Tests use this to make mtime
// and ctime deterministic.
func WithClock(now func() time.Time) Option {
	return func(f *FileSystem) { f.now = now }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(f *FileSystem) { f.metrics = m }
}

// FileSystem implements the chunked file emulation over a single key-value
// store. It is safe for concurrent use; see the package documentation for
// the limits of that guarantee across writers to the same path.
type FileSystem struct {
	store    kv.Store
	meta     *MetadataStore
	chunks   *ChunkStore
	codec    Codec
	identity Identity
	now      func() time.Time
	metrics  Metrics
}

// New creates a FileSystem over the given store.
func New(store kv.Store, opts ...Option) *FileSystem {
	f := &FileSystem{
		store: store,
		codec: JSONCodec{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.meta = NewMetadataStore(store, f.codec)
	f.chunks = NewChunkStore(store)
	return f
}

// Identity returns the owner stamped onto newly created entries.
func (f *FileSystem) Identity() Identity {
	return f.identity
}

// observe reports a completed operation to the metrics sink, if any.
func (f *FileSystem) observe(op string, start time.Time, err error) {
	if f.metrics != nil {
		f.metrics.ObserveOperation(op, time.Since(start), err)
	}
}

// finish closes out an operation: metrics first, then the trace span,
// with err recorded on the span before it ends.
func (f *FileSystem) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	f.observe(op, start, err)
	telemetry.RecordError(ctx, err)
	span.End()
}

func (f *FileSystem) recordBytes(op string, n int) {
	if f.metrics != nil && n > 0 {
		f.metrics.RecordBytes(op, int64(n))
	}
}
