package config

import (
	"context"
	"fmt"

	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/kv"
	"github.com/marmos91/kvfs/pkg/kv/badger"
	"github.com/marmos91/kvfs/pkg/kv/bolt"
	"github.com/marmos91/kvfs/pkg/kv/instrumented"
	"github.com/marmos91/kvfs/pkg/kv/memory"
	"github.com/marmos91/kvfs/pkg/kv/s3"
	prometheusmetrics "github.com/marmos91/kvfs/pkg/metrics/prometheus"
)

// NewStore creates the key-value store described by the configuration.
//
// The returned store is wrapped with Prometheus instrumentation when the
// metrics registry is initialized; otherwise the wrapper is a no-op and the
// backend is returned directly.
//
// The caller owns the store and must Close it on shutdown.
func NewStore(ctx context.Context, cfg StoreConfig) (kv.Store, error) {
	var (
		store kv.Store
		err   error
	)

	switch cfg.Type {
	case StoreTypeMemory:
		store = createMemoryStore(cfg)
	case StoreTypeBadger:
		store, err = createBadgerStore(cfg)
	case StoreTypeBolt:
		store, err = createBoltStore(cfg)
	case StoreTypeS3:
		store, err = createS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	return instrumented.New(store, string(cfg.Type), prometheusmetrics.NewStoreMetrics()), nil
}

// createMemoryStore creates an in-memory store.
func createMemoryStore(cfg StoreConfig) kv.Store {
	return memory.NewWithConfig(memory.Config{
		MaxValueSize: cfg.MaxValueSize.Int(),
	})
}

// createBadgerStore creates a BadgerDB-backed store.
func createBadgerStore(cfg StoreConfig) (kv.Store, error) {
	store, err := badger.New(badger.Config{
		Path:           cfg.Badger.Path,
		InMemory:       cfg.Badger.InMemory,
		MaxValueSize:   cfg.MaxValueSize.Int(),
		BlockCacheSize: cfg.Badger.BlockCacheSize.Int64(),
		IndexCacheSize: cfg.Badger.IndexCacheSize.Int64(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return store, nil
}

// createBoltStore creates a bbolt-backed store.
func createBoltStore(cfg StoreConfig) (kv.Store, error) {
	store, err := bolt.New(bolt.Config{
		Path:         cfg.Bolt.Path,
		MaxValueSize: cfg.MaxValueSize.Int(),
		NoSync:       cfg.Bolt.NoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}
	return store, nil
}

// createS3Store creates an S3-backed store.
func createS3Store(ctx context.Context, cfg StoreConfig) (kv.Store, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("S3 store requires bucket to be set")
	}

	store, err := s3.NewFromConfig(ctx, s3.Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		KeyPrefix:       cfg.S3.KeyPrefix,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		ForcePathStyle:  cfg.S3.ForcePathStyle,
		MaxValueSize:    cfg.MaxValueSize.Int(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}
	return store, nil
}

// NewFileSystem creates the chunked filesystem described by the
// configuration, layered on the given store.
func NewFileSystem(store kv.Store, cfg FilesystemConfig) (*fs.FileSystem, error) {
	opts := []fs.Option{
		fs.WithIdentity(fs.Identity{UID: cfg.DefaultUID, GID: cfg.DefaultGID}),
		fs.WithMetrics(prometheusmetrics.NewFilesystemMetrics()),
	}

	switch cfg.Encoding {
	case "json", "":
		opts = append(opts, fs.WithCodec(fs.JSONCodec{}))
	case "cbor":
		opts = append(opts, fs.WithCodec(fs.CBORCodec{}))
	default:
		return nil, fmt.Errorf("unknown metadata encoding: %q", cfg.Encoding)
	}

	return fs.New(store, opts...), nil
}
