// Package memory provides an in-memory kv.Store implementation for testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/kvfs/pkg/kv"
)

// Config holds configuration for the in-memory store.
type Config struct {
	// MaxValueSize bounds stored values in bytes (0 uses kv.DefaultMaxValueSize).
	MaxValueSize int
}

// Store is an in-memory implementation of kv.Store.
type Store struct {
	mu           sync.RWMutex
	values       map[string][]byte
	maxValueSize int
	closed       bool
}

// New creates a new in-memory store with default configuration.
func New() *Store {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a new in-memory store.
func NewWithConfig(config Config) *Store {
	maxSize := config.MaxValueSize
	if maxSize <= 0 {
		maxSize = kv.DefaultMaxValueSize
	}
	return &Store{
		values:       make(map[string][]byte),
		maxValueSize: maxSize,
	}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kv.ErrStoreClosed
	}

	value, ok := s.values[key]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}

	// Return a copy to prevent mutation through the returned slice.
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(value) > s.maxValueSize {
		return fmt.Errorf("value of %d bytes exceeds %d byte bound: %w",
			len(value), s.maxValueSize, kv.ErrValueTooLarge)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kv.ErrStoreClosed
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	s.values[key] = copied
	return nil
}

// Delete removes key. Deleting an absent key is a no-op success.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kv.ErrStoreClosed
	}

	delete(s.values, key)
	return nil
}

// List returns one page of keys in lexicographic order.
func (s *Store) List(ctx context.Context, opts kv.ListOptions) (kv.Page, error) {
	if err := ctx.Err(); err != nil {
		return kv.Page{}, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = kv.DefaultPageSize
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return kv.Page{}, kv.ErrStoreClosed
	}

	matching := make([]string, 0)
	for key := range s.values {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if opts.Marker != "" && key <= opts.Marker {
			continue
		}
		matching = append(matching, key)
	}
	sort.Strings(matching)

	page := kv.Page{}
	if len(matching) > limit {
		page.Keys = matching[:limit]
		page.NextMarker = matching[limit-1]
	} else {
		page.Keys = matching
	}
	return page, nil
}

// HealthCheck always succeeds while the store is open.
func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return kv.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed and releases its contents.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.values = nil
	return nil
}

// Len returns the number of stored keys. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Ensure Store implements kv.Store.
var _ kv.Store = (*Store)(nil)
