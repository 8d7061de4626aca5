package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/kvfs/pkg/api/middleware"
	"github.com/marmos91/kvfs/pkg/auth"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

func newAuthStore(t *testing.T) *auth.Store {
	t.Helper()

	store, err := auth.NewStore(&auth.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "users.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create user store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: testJWTSecret})
	if err != nil {
		t.Fatalf("Failed to create JWT service: %v", err)
	}
	return svc
}

// createTestUser hashes the password and persists the user. Role defaults to
// "user" and enablement must be set by the caller.
func createTestUser(t *testing.T, store *auth.Store, user *auth.User, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user.PasswordHash = hash
	if user.Role == "" {
		user.Role = string(auth.RoleUser)
	}
	if _, err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %q: %v", user.Username, err)
	}
	return user
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest("POST", target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeLoginResponse(t *testing.T, w *httptest.ResponseRecorder) LoginResponse {
	t.Helper()

	var resp LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return resp
}

func TestLogin_Success(t *testing.T) {
	store := newAuthStore(t)
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(store, jwtService)

	createTestUser(t, store, &auth.User{Username: "alice", Enabled: true}, "password123")

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Username: "alice",
		Password: "password123",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	resp := decodeLoginResponse(t, w)
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Expected both tokens to be set")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("Expected token type 'Bearer', got '%s'", resp.TokenType)
	}
	if resp.User.Username != "alice" {
		t.Errorf("Expected user 'alice', got '%s'", resp.User.Username)
	}

	claims, err := jwtService.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("Issued access token failed validation: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Expected claims for 'alice', got '%s'", claims.Username)
	}

	// Last login is recorded as a side effect.
	user, err := store.GetUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.LastLogin == nil {
		t.Error("Expected last login to be recorded")
	}
}

func TestLogin_WrongPassword_Returns401(t *testing.T) {
	store := newAuthStore(t)
	handler := NewAuthHandler(store, newTestJWTService(t))

	createTestUser(t, store, &auth.User{Username: "alice", Enabled: true}, "password123")

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Username: "alice",
		Password: "wrong-password",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLogin_UnknownUser_Returns401(t *testing.T) {
	store := newAuthStore(t)
	handler := NewAuthHandler(store, newTestJWTService(t))

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Username: "nobody",
		Password: "password123",
	})

	// Unknown users get the same answer as wrong passwords.
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLogin_DisabledUser_Returns403(t *testing.T) {
	store := newAuthStore(t)
	handler := NewAuthHandler(store, newTestJWTService(t))

	createTestUser(t, store, &auth.User{Username: "alice", Enabled: false}, "password123")

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{
		Username: "alice",
		Password: "password123",
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestLogin_MissingFields_Returns400(t *testing.T) {
	store := newAuthStore(t)
	handler := NewAuthHandler(store, newTestJWTService(t))

	w := postJSON(t, handler.Login, "/api/v1/auth/login", LoginRequest{Username: "alice"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestLogin_InvalidBody_Returns400(t *testing.T) {
	store := newAuthStore(t)
	handler := NewAuthHandler(store, newTestJWTService(t))

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRefresh_Success(t *testing.T) {
	store := newAuthStore(t)
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(store, jwtService)

	user := createTestUser(t, store, &auth.User{Username: "alice", Enabled: true}, "password123")
	pair, err := jwtService.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	resp := decodeLoginResponse(t, w)
	if _, err := jwtService.ValidateAccessToken(resp.AccessToken); err != nil {
		t.Errorf("Refreshed access token failed validation: %v", err)
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	store := newAuthStore(t)
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(store, jwtService)

	user := createTestUser(t, store, &auth.User{Username: "alice", Enabled: true}, "password123")
	pair, err := jwtService.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	// An access token is not accepted in place of a refresh token.
	w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: pair.AccessToken,
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRefresh_GarbageToken_Returns401(t *testing.T) {
	store := newAuthStore(t)
	handler := NewAuthHandler(store, newTestJWTService(t))

	w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: "not-a-jwt",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRefresh_DisabledUser_Returns403(t *testing.T) {
	store := newAuthStore(t)
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(store, jwtService)

	user := createTestUser(t, store, &auth.User{Username: "alice", Enabled: true}, "password123")
	pair, err := jwtService.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	// Disable the account after the token was issued.
	user.Enabled = false
	if err := store.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestMe(t *testing.T) {
	store := newAuthStore(t)
	jwtService := newTestJWTService(t)
	handler := NewAuthHandler(store, jwtService)

	user := createTestUser(t, store, &auth.User{Username: "alice", Enabled: true}, "password123")
	pair, err := jwtService.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtService))
		r.Get("/me", handler.Me)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp UserResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode user response: %v", err)
	}
	if resp.Username != "alice" {
		t.Errorf("Expected username 'alice', got '%s'", resp.Username)
	}

	// Without a token the middleware rejects the request.
	req = httptest.NewRequest("GET", "/me", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d without token, got %d", http.StatusUnauthorized, w.Code)
	}
}
