package auth

import "errors"

// Common errors for user store and credential operations.
var (
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when creating a user whose username or
	// UID is already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUserDisabled is returned when a disabled account tries to
	// authenticate.
	ErrUserDisabled = errors.New("user account is disabled")

	// ErrInvalidCredentials is returned when username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordTooShort is returned when a password is too short.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrPasswordTooLong is returned when a password is too long.
	// bcrypt has a maximum input length of 72 bytes.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)
