package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/pkg/config"
)

// InitLogger configures the process-wide logger from the loaded config.
func InitLogger(cfg *config.Config) error {
	lc := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(lc); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	return nil
}

// GetDefaultStateDir returns the per-user state directory, following the
// XDG base directory spec.
func GetDefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "kvfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "kvfs")
	}
	return filepath.Join(home, ".local", "state", "kvfs")
}

// GetDefaultPidFile returns where a detached server records its PID.
func GetDefaultPidFile() string {
	return filepath.Join(GetDefaultStateDir(), "kvfs.pid")
}

// GetDefaultLogFile returns where a detached server writes its logs.
func GetDefaultLogFile() string {
	return filepath.Join(GetDefaultStateDir(), "kvfs.log")
}
