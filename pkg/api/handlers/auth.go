package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/api/middleware"
	"github.com/marmos91/kvfs/pkg/auth"
)

// AuthHandler serves the login, refresh, and whoami endpoints.
type AuthHandler struct {
	users      *auth.Store
	jwtService *auth.JWTService
}

// NewAuthHandler builds a handler backed by the given user store and token signer.
func NewAuthHandler(users *auth.Store, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
	}
}

// LoginRequest carries the credentials for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the token pair returned by both login and refresh.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// UserResponse is the public view of a user. Password material never
// leaves the store.
type UserResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"display_name,omitempty"`
	Email              string     `json:"email,omitempty"`
	Role               string     `json:"role"`
	UID                *uint32    `json:"uid,omitempty"`
	GID                *uint32    `json:"gid,omitempty"`
	Enabled            bool       `json:"enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// RefreshRequest carries the token for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /api/v1/auth/login. Bad credentials and unknown
// usernames produce the same 401, so the endpoint does not reveal which
// usernames exist.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartSpan(r.Context(), telemetry.SpanAuthLogin,
		trace.WithAttributes(telemetry.AuthMethod("password")))
	defer span.End()

	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, "Username and password are required")
		return
	}

	user, err := h.users.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserNotFound) {
			Unauthorized(w, "Invalid username or password")
			return
		}
		if errors.Is(err, auth.ErrUserDisabled) {
			Forbidden(w, "User account is disabled")
			return
		}
		telemetry.RecordError(ctx, err)
		InternalServerError(w, "Authentication failed")
		return
	}
	span.SetAttributes(telemetry.Username(user.Username))

	tokenPair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		telemetry.RecordError(ctx, err)
		InternalServerError(w, "Failed to generate token")
		return
	}

	// Last-login is best effort; a failed write must not fail the login.
	if err := h.users.UpdateLastLogin(ctx, user.Username, time.Now()); err != nil {
		logger.WarnCtx(ctx, "failed to update last login time", logger.KeyUsername, user.Username, logger.Err(err))
	}

	WriteJSONOK(w, loginResponse(tokenPair, user))
}

// Refresh handles POST /api/v1/auth/refresh. The user record is re-read
// before issuing new tokens, so a disable since login takes effect here
// rather than at access-token expiry.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		BadRequest(w, "Refresh token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		msg := "Invalid refresh token"
		if errors.Is(err, auth.ErrExpiredToken) {
			msg = "Refresh token has expired"
		}
		Unauthorized(w, msg)
		return
	}

	user, ok := getUserOrUnauthorized(w, r, h.users, claims.Username)
	if !ok {
		return
	}
	if !user.Enabled {
		Forbidden(w, "User account is disabled")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	WriteJSONOK(w, loginResponse(tokenPair, user))
}

// Me handles GET /api/v1/auth/me. The record comes from the store, not
// from the token claims, so edits made since login show up here.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	user, ok := getUserOrUnauthorized(w, r, h.users, claims.Username)
	if !ok {
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

func loginResponse(pair *auth.TokenPair, user *auth.User) LoginResponse {
	return LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt,
		User:         userToResponse(user),
	}
}

// userToResponse strips a user down to its API representation.
func userToResponse(user *auth.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		DisplayName:        user.DisplayName,
		Email:              user.Email,
		Role:               user.Role,
		UID:                user.UID,
		GID:                user.GID,
		Enabled:            user.Enabled,
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt,
		LastLogin:          user.LastLogin,
	}
}
