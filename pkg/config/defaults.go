package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/marmos91/kvfs/pkg/kv"
)

// defaultProfileTypes is the profile set collected when the config names
// none. CPU, allocation and goroutine profiles cover most investigations.
var defaultProfileTypes = []string{
	"cpu",
	"alloc_objects",
	"alloc_space",
	"inuse_objects",
	"inuse_space",
	"goroutines",
}

// ApplyDefaults fills every zero-valued field with its default. Values
// set explicitly, whether by file or environment, are left alone.
func ApplyDefaults(cfg *Config) {
	cfg.Logging.applyDefaults()
	cfg.Telemetry.applyDefaults()
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	cfg.Store.applyDefaults()
	cfg.Filesystem.applyDefaults()
	cfg.Database.ApplyDefaults()
	cfg.Metrics.applyDefaults()
	cfg.API.ApplyDefaults()
	cfg.Admin.applyDefaults()
}

func (c *LoggingConfig) applyDefaults() {
	if c.Level == "" {
		c.Level = "INFO"
	}
	// Stored uppercase so later comparisons never care how the file
	// spelled it.
	c.Level = strings.ToUpper(c.Level)

	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

func (c *TelemetryConfig) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	c.Profiling.applyDefaults()
}

func (c *ProfilingConfig) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "http://localhost:4040"
	}
	if len(c.ProfileTypes) == 0 {
		c.ProfileTypes = slices.Clone(defaultProfileTypes)
	}
}

// applyDefaults points the embedded backends at the user data directory,
// so a fresh install works with no store section at all. S3 keeps no
// defaults: the bucket has to come from the user.
func (c *StoreConfig) applyDefaults() {
	if c.Type == "" {
		c.Type = StoreTypeBadger
	}
	if c.MaxValueSize == 0 {
		c.MaxValueSize = kv.DefaultMaxValueSize
	}
	if c.Badger.Path == "" && !c.Badger.InMemory {
		c.Badger.Path = filepath.Join(getDataDir(), "badger")
	}
	if c.Bolt.Path == "" {
		c.Bolt.Path = filepath.Join(getDataDir(), "kvfs.db")
	}
}

func (c *FilesystemConfig) applyDefaults() {
	if c.Encoding == "" {
		c.Encoding = "json"
	}
}

func (c *MetricsConfig) applyDefaults() {
	if c.Enabled && c.Port == 0 {
		c.Port = 9090
	}
}

func (c *AdminConfig) applyDefaults() {
	if c.Username == "" {
		c.Username = "admin"
	}
}

// GetDefaultConfig builds the configuration a bare "kvfs start" runs
// with. Sample config generation and tests start from it too.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
