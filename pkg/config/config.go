// Package config loads, validates, and persists the kvfs server
// configuration, and builds the key-value store and filesystem the
// configuration describes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/kvfs/internal/bytesize"
	"github.com/marmos91/kvfs/pkg/api"
	"github.com/marmos91/kvfs/pkg/auth"
)

// Config is the full server configuration. Values resolve highest
// precedence first: CLI flags, KVFS_* environment variables, the
// configuration file, built-in defaults.
type Config struct {
	// Logging selects level, format and destination for server logs.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry configures OTLP trace export and Pyroscope profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout caps how long a graceful shutdown may take before
	// the server gives up on in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Store configures the key-value backend holding all file data.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Filesystem configures the chunked filesystem layered on the store.
	Filesystem FilesystemConfig `mapstructure:"filesystem" yaml:"filesystem"`

	// Database locates the SQLite database backing API users.
	Database auth.DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Metrics configures the Prometheus scrape endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API configures the REST server.
	API api.APIConfig `mapstructure:"api" yaml:"api"`

	// Admin seeds the first administrator account; written by
	// "kvfs init", consumed on first server start.
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`
}

// LoggingConfig controls where and how the server logs.
type LoggingConfig struct {
	// Level is the minimum severity emitted: DEBUG, INFO, WARN or
	// ERROR, in either case.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is "text" for human-readable lines or "json" for one
	// object per line.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls span export to an OTLP collector such as
// Jaeger or Tempo. Tracing is off unless enabled here.
type TelemetryConfig struct {
	// Enabled turns on span export.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the collector's OTLP gRPC address. Default
	// "localhost:4317".
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure skips TLS on the exporter connection. Leave true only
	// for a local collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the fraction of traces kept, 0.0 to 1.0.
	// Default 1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling configures the Pyroscope agent.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls the Pyroscope agent. When enabled the process
// streams CPU and memory profiles to the configured server.
type ProfilingConfig struct {
	// Enabled starts the agent at boot.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL. Default
	// "http://localhost:4040".
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes lists the profiles to collect; empty means the
	// default set. See internal/telemetry for the accepted names.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. Disabled
// means nothing is collected at all.
type MetricsConfig struct {
	// Enabled registers the collectors and serves /metrics.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port serves the metrics endpoint. Default 9090.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// StoreType identifies a key-value store backend.
type StoreType string

const (
	// StoreTypeMemory keeps everything in process memory (tests, demos).
	StoreTypeMemory StoreType = "memory"

	// StoreTypeBadger uses an embedded BadgerDB database (single-node default).
	StoreTypeBadger StoreType = "badger"

	// StoreTypeBolt uses an embedded bbolt database file.
	StoreTypeBolt StoreType = "bolt"

	// StoreTypeS3 uses an S3 bucket (or S3-compatible service).
	StoreTypeS3 StoreType = "s3"
)

// StoreConfig configures the key-value backend holding file metadata and
// chunk data. Exactly one backend is active, selected by Type.
type StoreConfig struct {
	// Type selects the backend: memory, badger, bolt, or s3.
	// Default: badger
	Type StoreType `mapstructure:"type" validate:"required,oneof=memory badger bolt s3" yaml:"type"`

	// MaxValueSize bounds individual stored values.
	// Supports human-readable formats: "4Ki", "8192".
	// Must be at least one chunk. Default: 4Ki
	MaxValueSize bytesize.ByteSize `mapstructure:"max_value_size" yaml:"max_value_size"`

	// Badger contains BadgerDB-specific settings (used when type is "badger").
	Badger BadgerStoreConfig `mapstructure:"badger" yaml:"badger"`

	// Bolt contains bbolt-specific settings (used when type is "bolt").
	Bolt BoltStoreConfig `mapstructure:"bolt" yaml:"bolt"`

	// S3 contains S3-specific settings (used when type is "s3").
	S3 S3StoreConfig `mapstructure:"s3" yaml:"s3"`
}

// BadgerStoreConfig contains BadgerDB-specific configuration.
type BadgerStoreConfig struct {
	// Path is the directory for the Badger database files.
	// Default: $XDG_DATA_HOME/kvfs/badger
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory keeps all data in memory instead of on disk.
	// Default: false
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`

	// BlockCacheSize is the Badger block cache size.
	// Supports human-readable formats: "256Mi", "1Gi". 0 keeps the Badger default.
	BlockCacheSize bytesize.ByteSize `mapstructure:"block_cache_size" yaml:"block_cache_size"`

	// IndexCacheSize is the Badger index cache size.
	// Supports human-readable formats: "128Mi". 0 keeps the Badger default.
	IndexCacheSize bytesize.ByteSize `mapstructure:"index_cache_size" yaml:"index_cache_size"`
}

// BoltStoreConfig contains bbolt-specific configuration.
type BoltStoreConfig struct {
	// Path is the database file path.
	// Default: $XDG_DATA_HOME/kvfs/kvfs.db
	Path string `mapstructure:"path" yaml:"path"`

	// NoSync skips fsync on commit. Faster, unsafe on crash.
	// Default: false
	NoSync bool `mapstructure:"no_sync" yaml:"no_sync"`
}

// S3StoreConfig contains S3-specific configuration.
type S3StoreConfig struct {
	// Bucket is the S3 bucket name (required when type is "s3").
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services
	// like MinIO or Localstack).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// KeyPrefix is prepended to all object keys (e.g., "kvfs/").
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`

	// AccessKeyID and SecretAccessKey configure static credentials.
	// When empty, the SDK default credential chain is used.
	// KVFS_STORE_S3_SECRET_ACCESS_KEY overrides the file value.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// ForcePathStyle forces path-style addressing (required for
	// Localstack/MinIO).
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// FilesystemConfig configures the chunked filesystem layered on the store.
type FilesystemConfig struct {
	// Encoding selects the metadata serialization format.
	// Valid values: json, cbor. All servers sharing a store must agree.
	// Default: json
	Encoding string `mapstructure:"encoding" validate:"required,oneof=json cbor" yaml:"encoding"`

	// DefaultUID is the owner stamped onto files created without an
	// authenticated Unix identity. Default: 0
	DefaultUID uint32 `mapstructure:"default_uid" yaml:"default_uid"`

	// DefaultGID is the group stamped onto files created without an
	// authenticated Unix identity. Default: 0
	DefaultGID uint32 `mapstructure:"default_gid" yaml:"default_gid"`
}

// AdminConfig seeds the initial administrator account.
type AdminConfig struct {
	// Username of the administrator. Default "admin".
	Username string `mapstructure:"username" yaml:"username"`

	// Email is optional contact metadata.
	Email string `mapstructure:"email" yaml:"email,omitempty"`

	// PasswordHash is the bcrypt hash produced by "kvfs init".
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// Load reads configuration from the given file, layers KVFS_*
// environment variables over it, fills remaining gaps with defaults,
// and validates the result. An empty path means the default location.
// A missing file is not an error: the defaults are returned as-is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for commands that require an existing file. When the
// file is missing it fails with instructions for creating one instead
// of silently running on defaults.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Initialize one first:\n"+
				"  kvfs init\n\n"+
				"or point at an existing file:\n"+
				"  kvfs <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Create it with:\n"+
			"  kvfs init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path as YAML. The file is
// created 0600 since it can hold password hashes and S3 credentials.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper binds the environment and locates the config file.
// KVFS_STORE_TYPE=bolt overrides store.type, and so on: dots in the key
// path become underscores.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("KVFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the located file into v. A missing file reports
// found=false with no error so the caller can fall back to defaults.
func readConfigFile(v *viper.Viper) (bool, error) {
	err := v.ReadInConfig()
	switch {
	case err == nil:
		return true, nil
	case errorIsNotFound(err):
		return false, nil
	}
	return false, fmt.Errorf("failed to read config file: %w", err)
}

// errorIsNotFound matches both ways a config file can be absent: viper's
// search failing, and an explicitly named file that does not exist.
func errorIsNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

// decodeHooks converts the custom config scalar types during unmarshal.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		decodeByteSize(),
		decodeDuration(),
	)
}

// decodeByteSize accepts "1Gi", "100MB" or plain numbers for
// bytesize.ByteSize fields.
func decodeByteSize() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML numbers frequently arrive as float64.
			return bytesize.ByteSize(v), nil
		}
		return data, nil
	}
}

// decodeDuration accepts "30s", "5m" or raw nanosecond counts for
// time.Duration fields.
func decodeDuration() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		}
		return data, nil
	}
}

// getConfigDir resolves $XDG_CONFIG_HOME/kvfs, then ~/.config/kvfs,
// then "." when no home directory can be determined.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kvfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "kvfs")
}

// getDataDir resolves $XDG_DATA_HOME/kvfs, then ~/.local/share/kvfs,
// then "." when no home directory can be determined. Embedded store
// defaults live under it.
func getDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kvfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "kvfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir exposes the configuration directory to the init command.
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir exposes the data directory to the init command.
func GetDataDir() string {
	return getDataDir()
}
