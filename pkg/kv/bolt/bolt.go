// Package bolt provides a bbolt-backed kv.Store implementation.
//
// bbolt stores everything in a single file with B+tree pages, which makes it
// the simplest durable backend: one file to copy for a full backup.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/marmos91/kvfs/pkg/kv"
)

var bucketValues = []byte("values")

// Config holds configuration for the bolt store.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxValueSize bounds stored values in bytes (0 uses kv.DefaultMaxValueSize).
	MaxValueSize int

	// Timeout bounds how long Open waits for the file lock (0 means 1s).
	Timeout time.Duration

	// NoSync skips fsync on commit. Faster, unsafe on crash.
	NoSync bool
}

// Store is a bbolt-backed implementation of kv.Store.
type Store struct {
	db           *bbolt.DB
	maxValueSize int
	closed       bool
	mu           sync.RWMutex
}

// New opens (or creates) a bolt database at the configured path.
func New(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("bolt: path is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = time.Second
	}

	db, err := bbolt.Open(config.Path, 0o600, &bbolt.Options{
		Timeout: timeout,
		NoSync:  config.NoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: open: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketValues)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}

	maxSize := config.MaxValueSize
	if maxSize <= 0 {
		maxSize = kv.DefaultMaxValueSize
	}

	return &Store{db: db, maxValueSize: maxSize}, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketValues).Get([]byte(key))
		if raw == nil {
			return kv.ErrKeyNotFound
		}
		// The slice is only valid inside the transaction.
		value = append([]byte{}, raw...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(value) > s.maxValueSize {
		return fmt.Errorf("value of %d bytes exceeds %d byte bound: %w",
			len(value), s.maxValueSize, kv.ErrValueTooLarge)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketValues).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op success.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketValues).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete: %w", err)
	}
	return nil
}

// List returns one page of keys in lexicographic order.
func (s *Store) List(ctx context.Context, opts kv.ListOptions) (kv.Page, error) {
	if err := s.ready(ctx); err != nil {
		return kv.Page{}, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = kv.DefaultPageSize
	}

	prefix := []byte(opts.Prefix)
	page := kv.Page{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketValues).Cursor()

		// Resume strictly after the marker when one is set.
		seek := prefix
		if opts.Marker != "" && opts.Marker >= opts.Prefix {
			seek = append([]byte(opts.Marker), 0)
		}

		for k, _ := c.Seek(seek); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if len(page.Keys) == limit {
				page.NextMarker = page.Keys[len(page.Keys)-1]
				return nil
			}
			page.Keys = append(page.Keys, string(k))
		}
		return nil
	})
	if err != nil {
		return kv.Page{}, fmt.Errorf("bolt list: %w", err)
	}

	return page, nil
}

// HealthCheck verifies the database accepts read transactions.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	if err := s.db.View(func(*bbolt.Tx) error { return nil }); err != nil {
		return fmt.Errorf("bolt health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return kv.ErrStoreClosed
	}
	return nil
}

// Ensure Store implements kv.Store.
var _ kv.Store = (*Store)(nil)
