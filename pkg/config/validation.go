package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/kvfs/pkg/fs/chunk"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// Validate per-backend requirements for the selected store type
	switch cfg.Store.Type {
	case StoreTypeBadger:
		if cfg.Store.Badger.Path == "" && !cfg.Store.Badger.InMemory {
			return fmt.Errorf("store.badger: path is required unless in_memory is true")
		}
	case StoreTypeBolt:
		if cfg.Store.Bolt.Path == "" {
			return fmt.Errorf("store.bolt: path is required")
		}
	case StoreTypeS3:
		if cfg.Store.S3.Bucket == "" {
			return fmt.Errorf("store.s3: bucket is required")
		}
	}

	// Every chunk is stored as a single value, so the store's value bound
	// must leave room for a full chunk.
	if cfg.Store.MaxValueSize > 0 && cfg.Store.MaxValueSize.Int() < chunk.Size {
		return fmt.Errorf("store.max_value_size: must be at least %d bytes (one chunk), got %d",
			chunk.Size, cfg.Store.MaxValueSize.Int())
	}

	// Validate metrics and API ports don't conflict
	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.API.Port {
		return fmt.Errorf("metrics.port: conflicts with api.port (%d)", cfg.API.Port)
	}

	// Validate telemetry has an endpoint when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint: required when telemetry is enabled")
	}

	// Validate JWT secret length when configured in the file.
	// An unset secret is allowed here: the server generates a clear error at
	// startup, and 'kvfs init' guides the user through setting one.
	if cfg.API.JWT.Secret != "" && len(cfg.API.JWT.Secret) < 32 {
		return fmt.Errorf("api.jwt.secret: must be at least 32 characters, got %d", len(cfg.API.JWT.Secret))
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
