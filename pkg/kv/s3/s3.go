// Package s3 provides an S3-backed kv.Store implementation.
//
// Keys map directly to object keys (optionally under a fixed key prefix) and
// values to object bodies. Marker pagination maps onto ListObjectsV2 with
// StartAfter, so every List call is stateless. Works against AWS as well as
// S3-compatible services (MinIO, Localstack) via a custom endpoint and
// path-style addressing.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/kvfs/pkg/kv"
)

// Config holds configuration for the S3 store.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services).
	Endpoint string

	// KeyPrefix is prepended to all keys (e.g., "kvfs/").
	// Should end with "/" if non-empty.
	KeyPrefix string

	// AccessKeyID and SecretAccessKey configure static credentials
	// (optional; the SDK default chain is used when empty).
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle forces path-style addressing (required for
	// Localstack/MinIO).
	ForcePathStyle bool

	// MaxValueSize bounds stored values in bytes (0 uses kv.DefaultMaxValueSize).
	MaxValueSize int
}

// Store is an S3-backed implementation of kv.Store.
type Store struct {
	client       *awss3.Client
	bucket       string
	keyPrefix    string
	maxValueSize int
	closed       bool
	mu           sync.RWMutex
}

// New creates a new S3 store with an existing client.
func New(client *awss3.Client, config Config) *Store {
	maxSize := config.MaxValueSize
	if maxSize <= 0 {
		maxSize = kv.DefaultMaxValueSize
	}
	return &Store{
		client:       client,
		bucket:       config.Bucket,
		keyPrefix:    config.KeyPrefix,
		maxValueSize: maxSize,
	}
}

// NewFromConfig creates a new S3 store by building an S3 client from config.
// This is the preferred constructor when you don't have an existing client.
func NewFromConfig(ctx context.Context, config Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if config.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}
	if config.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	client := awss3.NewFromConfig(awsCfg, s3Opts...)
	return New(client, config), nil
}

// fullKey returns the full object key for a store key.
func (s *Store) fullKey(key string) string {
	return s.keyPrefix + key
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	resp, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer resp.Body.Close()

	value, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object body: %w", err)
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

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// Delete removes key. S3 DeleteObject on an absent key already succeeds, so
// idempotency comes for free.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
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

	input := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.fullKey(opts.Prefix)),
		MaxKeys: aws.Int32(int32(limit)),
	}
	if opts.Marker != "" {
		input.StartAfter = aws.String(s.fullKey(opts.Marker))
	}

	resp, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return kv.Page{}, fmt.Errorf("s3 list objects: %w", err)
	}

	page := kv.Page{}
	for _, obj := range resp.Contents {
		page.Keys = append(page.Keys, s.stripPrefix(aws.ToString(obj.Key)))
	}
	if aws.ToBool(resp.IsTruncated) && len(page.Keys) > 0 {
		page.NextMarker = page.Keys[len(page.Keys)-1]
	}
	return page, nil
}

// HealthCheck verifies the S3 bucket is accessible.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
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

// stripPrefix strips the configured key prefix from an object key.
func (s *Store) stripPrefix(objectKey string) string {
	if s.keyPrefix != "" && strings.HasPrefix(objectKey, s.keyPrefix) {
		return objectKey[len(s.keyPrefix):]
	}
	return objectKey
}

// isNotFoundError checks if an error is an S3 not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	// HeadObject reports plain 404s without a typed error.
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "404")
}

// Ensure Store implements kv.Store.
var _ kv.Store = (*Store)(nil)
