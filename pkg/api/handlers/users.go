package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/kvfs/pkg/api/middleware"
	"github.com/marmos91/kvfs/pkg/auth"
)

// UserHandler serves the admin user-management endpoints plus the
// self-service password change.
type UserHandler struct {
	users *auth.Store
}

// NewUserHandler builds a handler over the given user store.
func NewUserHandler(users *auth.Store) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUserRequest is the body of POST /api/v1/users.
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

// UpdateUserRequest is the body of PUT /api/v1/users/{username}.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	UID         *uint32 `json:"uid,omitempty"`
	GID         *uint32 `json:"gid,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// ChangePasswordRequest is the body of both password endpoints.
// CurrentPassword is only consulted for self-service changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

// Create handles POST /api/v1/users (admin only).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" {
		BadRequest(w, "Username is required")
		return
	}
	if req.Password == "" {
		BadRequest(w, "Password is required")
		return
	}

	passwordHash, ok := hashPasswordOrReject(w, req.Password)
	if !ok {
		return
	}

	roleName := string(auth.RoleUser)
	if req.Role != "" {
		name, ok := parseRole(w, req.Role)
		if !ok {
			return
		}
		roleName = name
	}

	user := &auth.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         roleName,
		UID:          req.UID,
		GID:          req.GID,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Enabled:      req.Enabled == nil || *req.Enabled,
		CreatedAt:    time.Now(),
	}
	// Admin-set passwords are provisional; the owner must pick their own.
	user.MustChangePassword = true

	if _, err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			Conflict(w, "User already exists")
			return
		}
		InternalServerError(w, "Failed to create user")
		return
	}

	WriteJSONCreated(w, userToResponse(user))
}

// List handles GET /api/v1/users (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list users")
		return
	}

	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = userToResponse(u)
	}
	WriteJSONOK(w, out)
}

// Get handles GET /api/v1/users/{username} (admin only).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	user, ok := getUserOrError(w, r, h.users, username)
	if !ok {
		return
	}
	WriteJSONOK(w, userToResponse(user))
}

// Update handles PUT /api/v1/users/{username} (admin only). Absent
// fields keep their current values.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, ok := getUserOrError(w, r, h.users, username)
	if !ok {
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		name, ok := parseRole(w, *req.Role)
		if !ok {
			return
		}
		user.Role = name
	}
	if req.UID != nil {
		user.UID = req.UID
	}
	if req.GID != nil {
		user.GID = req.GID
	}
	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			Conflict(w, "UID is already assigned to another user")
			return
		}
		InternalServerError(w, "Failed to update user")
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

// Delete handles DELETE /api/v1/users/{username} (admin only). The
// admin account itself is not deletable.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	if auth.IsAdminUsername(username) {
		Forbidden(w, "Cannot delete admin user")
		return
	}

	if err := h.users.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		InternalServerError(w, "Failed to delete user")
		return
	}

	WriteNoContent(w)
}

// ResetPassword handles POST /api/v1/users/{username}/password (admin
// only). The new password is provisional; the user must change it at
// next login.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username, ok := pathUsername(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		BadRequest(w, "New password is required")
		return
	}

	user, ok := getUserOrError(w, r, h.users, username)
	if !ok {
		return
	}

	passwordHash, ok := hashPasswordOrReject(w, req.NewPassword)
	if !ok {
		return
	}

	// UpdatePassword clears the must-change flag, so the flag is re-set
	// afterwards: an admin reset always forces the user through a change.
	if err := h.users.UpdatePassword(r.Context(), username, passwordHash); err != nil {
		InternalServerError(w, "Failed to update password")
		return
	}

	user.MustChangePassword = true
	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "Failed to update user")
		return
	}

	WriteNoContent(w)
}

// ChangeOwnPassword handles POST /api/v1/users/me/password. A
// successful change clears the must-change flag.
func (h *UserHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		BadRequest(w, "New password is required")
		return
	}

	user, ok := getUserOrUnauthorized(w, r, h.users, claims.Username)
	if !ok {
		return
	}

	// The current password proves identity, except on a forced change,
	// where the user may never have known it.
	if !user.MustChangePassword {
		if req.CurrentPassword == "" {
			BadRequest(w, "Current password is required")
			return
		}
		if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
			Unauthorized(w, "Current password is incorrect")
			return
		}
	}

	passwordHash, ok := hashPasswordOrReject(w, req.NewPassword)
	if !ok {
		return
	}

	// UpdatePassword also clears the must-change flag.
	if err := h.users.UpdatePassword(r.Context(), claims.Username, passwordHash); err != nil {
		InternalServerError(w, "Failed to update password")
		return
	}

	WriteNoContent(w)
}

// parseRole validates a role name from a request body.
func parseRole(w http.ResponseWriter, s string) (string, bool) {
	role := auth.UserRole(s)
	if !role.IsValid() {
		BadRequest(w, "Invalid role. Must be 'user' or 'admin'")
		return "", false
	}
	return string(role), true
}
