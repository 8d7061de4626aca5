// Package instrumented wraps a kv.Store with per-operation metrics and
// trace spans, keeping the backends themselves free of observability code.
package instrumented

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/kv"
)

// StoreMetrics receives one observation per store operation. Implementations
// must tolerate nil receivers so a disabled registry costs nothing.
type StoreMetrics interface {
	// ObserveOperation records an operation with its duration and outcome.
	ObserveOperation(store, operation string, duration time.Duration, err error)

	// RecordPayload records the value bytes moved by a Get or Put.
	RecordPayload(store, operation string, bytes int64)
}

// Store decorates a kv.Store, timing every call and opening a child span
// around it. The store label tells backends apart when several are mounted
// in one process.
type Store struct {
	inner   kv.Store
	label   string
	metrics StoreMetrics
}

// New wraps inner with observability. With metrics nil and tracing off the
// inner store is returned untouched, keeping the call path free of
// indirection.
func New(inner kv.Store, label string, metrics StoreMetrics) kv.Store {
	if metrics == nil && !telemetry.IsEnabled() {
		return inner
	}
	return &Store{inner: inner, label: label, metrics: metrics}
}

// observe is the shared post-operation hook. A key miss is a routine
// outcome, so it is reported to metrics but never fails the span.
func (s *Store) observe(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(s.label, op, time.Since(start), err)
	}
	if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		telemetry.RecordError(ctx, err)
	}
}

func (s *Store) payload(op string, n int) {
	if s.metrics != nil {
		s.metrics.RecordPayload(s.label, op, int64(n))
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreGet, s.label, telemetry.StoreKey(key))
	defer span.End()

	start := time.Now()
	value, err := s.inner.Get(ctx, key)
	s.observe(ctx, "get", start, err)
	if err == nil {
		s.payload("get", len(value))
	}
	return value, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStorePut, s.label, telemetry.StoreKey(key))
	defer span.End()

	start := time.Now()
	err := s.inner.Put(ctx, key, value)
	s.observe(ctx, "put", start, err)
	if err == nil {
		s.payload("put", len(value))
	}
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreDelete, s.label, telemetry.StoreKey(key))
	defer span.End()

	start := time.Now()
	err := s.inner.Delete(ctx, key)
	s.observe(ctx, "delete", start, err)
	return err
}

func (s *Store) List(ctx context.Context, opts kv.ListOptions) (kv.Page, error) {
	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreList, s.label)
	defer span.End()

	start := time.Now()
	page, err := s.inner.List(ctx, opts)
	s.observe(ctx, "list", start, err)
	return page, err
}

// HealthCheck is timed but not traced; probes fire on a timer and would
// crowd out request traffic in the trace store.
func (s *Store) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := s.inner.HealthCheck(ctx)
	if s.metrics != nil {
		s.metrics.ObserveOperation(s.label, "health_check", time.Since(start), err)
	}
	return err
}

func (s *Store) Close() error {
	return s.inner.Close()
}

var _ kv.Store = (*Store)(nil)
