package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig configures the SQLite database backing the user store.
type DatabaseConfig struct {
	// Path is the path to the SQLite database file.
	// Default: $XDG_CONFIG_HOME/kvfs/users.db
	Path string `mapstructure:"path" yaml:"path"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *DatabaseConfig) ApplyDefaults() {
	if c.Path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
		c.Path = filepath.Join(configDir, "kvfs", "users.db")
	}
}

// Validate checks if the configuration is valid.
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// Store persists users in a SQLite database via GORM.
type Store struct {
	db     *gorm.DB
	config *DatabaseConfig
}

// NewStore creates a new user store based on the configuration.
// It automatically creates the database schema via GORM AutoMigrate.
func NewStore(config *DatabaseConfig) (*Store, error) {
	if config == nil {
		config = &DatabaseConfig{}
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// SQLite pragmas for better concurrent access:
	// - journal_mode(WAL): Write-Ahead Logging for concurrent readers/single writer
	// - busy_timeout(5000): Wait up to 5 seconds when database is locked
	dsn := config.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Suppress GORM logs by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	return &Store{db: db, config: config}, nil
}

// DB returns the underlying GORM database connection.
// This is useful for advanced queries or testing.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetUser retrieves a user by username.
func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &user, nil
}

// GetUserByUID retrieves a user by Unix UID.
// Used to resolve file ownership back to an API user.
func (s *Store) GetUserByUID(ctx context.Context, uid uint32) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &user, nil
}

// ListUsers returns all users. Returns an empty slice (not nil) when the
// store is empty.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	users := make([]*User, 0)
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a new user, generating a UUID if the user has no ID.
// Returns the user's ID on success.
func (s *Store) CreateUser(ctx context.Context, user *User) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", ErrDuplicateUser
		}
		return "", err
	}
	return user.ID, nil
}

// UpdateUser updates mutable user fields (username, enablement, role,
// identity, profile). Password updates go through UpdatePassword.
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	var existing User
	if err := s.db.WithContext(ctx).Where("id = ?", user.ID).First(&existing).Error; err != nil {
		return convertNotFoundError(err)
	}

	// Update specific fields using Select to handle pointers properly
	err := s.db.WithContext(ctx).
		Model(&existing).
		Select("Username", "Enabled", "MustChangePassword", "Role", "UID", "GID", "DisplayName", "Email").
		Updates(user).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

// DeleteUser removes a user by username.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	result := s.db.WithContext(ctx).Where("username = ?", username).Delete(&User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the user's password hash and clears the
// must-change-password flag.
func (s *Store) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("username = ?", username).
		Updates(map[string]any{
			"password_hash":        passwordHash,
			"must_change_password": false,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin records the user's last successful authentication time.
func (s *Store) UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("username = ?", username).
		Update("last_login", timestamp)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ValidateCredentials checks a username/password pair against the store.
// Returns ErrInvalidCredentials for unknown users so callers cannot
// distinguish missing accounts from wrong passwords.
func (s *Store) ValidateCredentials(ctx context.Context, username, password string) (*User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureAdminUser creates the admin user if it does not exist yet.
//
// The initial password comes from KVFS_ADMIN_INITIAL_PASSWORD when set,
// otherwise a random one is generated. Returns the plaintext password when
// a new admin was created (so it can be shown once), or empty string when
// the admin already existed.
func (s *Store) EnsureAdminUser(ctx context.Context) (string, error) {
	_, err := s.GetUser(ctx, AdminUsername)
	if err == nil {
		return "", nil // Admin already exists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	passwordFromEnv := os.Getenv(EnvAdminInitialPassword) != ""

	password, err := GetOrGenerateAdminPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	admin := DefaultAdminUser(passwordHash)

	// If password was explicitly set via env var, don't require change
	if passwordFromEnv {
		admin.MustChangePassword = false
	}

	if _, err := s.CreateUser(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}

	return password, nil
}

// IsAdminInitialized reports whether the admin user exists.
func (s *Store) IsAdminInitialized(ctx context.Context) (bool, error) {
	_, err := s.GetUser(ctx, AdminUsername)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the domain error.
func convertNotFoundError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
