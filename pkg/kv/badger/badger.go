// Package badger provides a BadgerDB-backed kv.Store implementation.
//
// Badger is an embedded LSM key-value database, a good fit for single-node
// deployments where the filesystem layer and its store live in one process.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/kvfs/pkg/kv"
)

// Config holds configuration for the Badger store.
type Config struct {
	// Path is the directory for the Badger database files.
	// Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory (tests, ephemeral deployments).
	InMemory bool

	// MaxValueSize bounds stored values in bytes (0 uses kv.DefaultMaxValueSize).
	MaxValueSize int

	// BlockCacheSize is the Badger block cache size in bytes (0 keeps the
	// Badger default).
	BlockCacheSize int64

	// IndexCacheSize is the Badger index cache size in bytes (0 keeps the
	// Badger default).
	IndexCacheSize int64
}

// Store is a BadgerDB-backed implementation of kv.Store.
type Store struct {
	db           *badgerdb.DB
	maxValueSize int
	closed       bool
	mu           sync.RWMutex
}

// New opens a Badger database at the configured path.
func New(config Config) (*Store, error) {
	opts := badgerdb.DefaultOptions(config.Path)
	opts = opts.WithLogger(nil)

	if config.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	if config.BlockCacheSize > 0 {
		opts = opts.WithBlockCacheSize(config.BlockCacheSize)
	}
	if config.IndexCacheSize > 0 {
		opts = opts.WithIndexCacheSize(config.IndexCacheSize)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
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
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return kv.ErrKeyNotFound
		}
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("badger get: %w", err)
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

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op success.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
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

	err := s.db.View(func(txn *badgerdb.Txn) error {
		iterOpts := badgerdb.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = prefix

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		// Resume strictly after the marker when one is set.
		seek := prefix
		if opts.Marker != "" && opts.Marker >= opts.Prefix {
			seek = append([]byte(opts.Marker), 0)
		}

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if len(page.Keys) == limit {
				page.NextMarker = page.Keys[len(page.Keys)-1]
				return nil
			}
			page.Keys = append(page.Keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return kv.Page{}, fmt.Errorf("badger list: %w", err)
	}

	return page, nil
}

// HealthCheck verifies the database accepts read transactions.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	if err := s.db.View(func(*badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("badger health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
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
