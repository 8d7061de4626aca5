package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFileHeader is prepended to generated configuration files.
const configFileHeader = `# kvfs Configuration File
#
# Generated by 'kvfs init'. Every value below can be overridden with an
# environment variable using the KVFS_ prefix and underscores for nesting,
# e.g. KVFS_LOGGING_LEVEL=DEBUG or KVFS_STORE_TYPE=bolt.
#
# Keep this file private: it contains the JWT signing secret.

`

// InitConfig creates a sample configuration file at the default location.
// Returns the path of the created file.
//
// Fails if a config file already exists, unless force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a sample configuration file at the given path,
// creating parent directories as needed.
//
// The generated file contains all defaults plus a freshly generated JWT
// secret, so the server starts without further edits.
//
// Fails if the file already exists, unless force is true.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()

	// Generate a development JWT secret so the API works out of the box.
	// Production deployments should override it via KVFS_API_SECRET.
	secret, err := generateJWTSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.API.JWT.Secret = secret

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	content := append([]byte(configFileHeader), data...)

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateJWTSecret returns a hex-encoded secret with 32 bytes of entropy
// (64 characters).
func generateJWTSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
