package apiclient

import (
	"net/url"
	"time"
)

// User is a user record as the API returns it.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"display_name,omitempty"`
	Email              string     `json:"email,omitempty"`
	Role               string     `json:"role"`
	UID                *uint32    `json:"uid,omitempty"`
	GID                *uint32    `json:"gid,omitempty"`
	Enabled            bool       `json:"enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at,omitempty"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// CreateUserRequest is the body for creating a user.
type CreateUserRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Email       string  `json:"email,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Role        string  `json:"role,omitempty"`
	UID         *uint32 `json:"uid,omitempty"`
	GID         *uint32 `json:"gid,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// UpdateUserRequest is the body for a partial user update. Nil fields
// are left unchanged.
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	UID         *uint32 `json:"uid,omitempty"`
	GID         *uint32 `json:"gid,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// ChangePasswordRequest is the body shared by the password endpoints.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

// userURL builds the API path for a single user, escaping the username.
func userURL(username string) string {
	return "/api/v1/users/" + url.PathEscape(username)
}

// ListUsers fetches every user (admin only).
func (c *Client) ListUsers() ([]User, error) {
	return getList[User](c, "/api/v1/users")
}

// GetUser fetches one user by username (admin only).
func (c *Client) GetUser(username string) (*User, error) {
	return getResource[User](c, userURL(username))
}

// CreateUser registers a new user (admin only).
func (c *Client) CreateUser(req *CreateUserRequest) (*User, error) {
	return postResource[User](c, "/api/v1/users", req)
}

// UpdateUser applies a partial update (admin only).
func (c *Client) UpdateUser(username string, req *UpdateUserRequest) (*User, error) {
	return putResource[User](c, userURL(username), req)
}

// DeleteUser removes a user (admin only).
func (c *Client) DeleteUser(username string) error {
	return deleteResource(c, userURL(username))
}

// ResetUserPassword resets a user's password (admin operation). The user is
// forced to change it on next login.
func (c *Client) ResetUserPassword(username, newPassword string) error {
	req := &ChangePasswordRequest{NewPassword: newPassword}
	return c.post(userURL(username)+"/password", req, nil)
}

// ChangeOwnPassword changes the current user's password. The current
// password may be empty when the account is flagged for a forced change.
func (c *Client) ChangeOwnPassword(currentPassword, newPassword string) error {
	req := &ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}
	return c.post("/api/v1/users/me/password", req, nil)
}

// GetCurrentUser fetches the user the access token belongs to.
func (c *Client) GetCurrentUser() (*User, error) {
	return getResource[User](c, "/api/v1/auth/me")
}
