package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/users", r.URL.Path)

		_ = json.NewEncoder(w).Encode([]User{
			{ID: "u-1", Username: "alice", Role: "admin", Enabled: true},
			{ID: "u-2", Username: "bob", Role: "user", Enabled: true},
		})
	})

	users, err := New(server.URL).WithToken("tok").ListUsers()
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestGetUser(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/users/alice", r.URL.Path)

		_ = json.NewEncoder(w).Encode(User{
			ID:          "u-1",
			Username:    "alice",
			DisplayName: "Alice",
			Email:       "alice@example.com",
			Role:        "admin",
			Enabled:     true,
		})
	})

	user, err := New(server.URL).WithToken("tok").GetUser("alice")
	require.NoError(t, err)

	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestGetUserEscapesUsername(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		// A username with a slash must not become an extra path segment.
		require.Equal(t, "/api/v1/users/a%2Fb", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode(User{Username: "a/b"})
	})

	user, err := New(server.URL).WithToken("tok").GetUser("a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", user.Username)
}

func TestGetUserNotFound(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		problem(w, http.StatusNotFound, "User not found")
	})

	user, err := New(server.URL).WithToken("tok").GetUser("ghost")
	assert.Nil(t, user)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
}

func TestCreateUser(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/users", r.URL.Path)

		var req CreateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "carol", req.Username)
		require.NotNil(t, req.UID)
		assert.Equal(t, uint32(1042), *req.UID)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(User{
			ID:                 "u-3",
			Username:           req.Username,
			DisplayName:        req.DisplayName,
			Role:               "user",
			UID:                req.UID,
			Enabled:            true,
			MustChangePassword: true,
		})
	})

	uid := uint32(1042)
	user, err := New(server.URL).WithToken("tok").CreateUser(&CreateUserRequest{
		Username:    "carol",
		Password:    "first-login-pw",
		DisplayName: "Carol",
		UID:         &uid,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-3", user.ID)
	assert.True(t, user.MustChangePassword)
	require.NotNil(t, user.UID)
	assert.Equal(t, uint32(1042), *user.UID)
}

func TestCreateUserConflict(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		problem(w, http.StatusConflict, "User already exists")
	})

	user, err := New(server.URL).WithToken("tok").CreateUser(&CreateUserRequest{
		Username: "alice",
		Password: "whatever",
	})
	assert.Nil(t, user)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsConflict())
}

func TestUpdateUser(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/users/bob", r.URL.Path)

		var req UpdateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.DisplayName)
		assert.Equal(t, "Robert", *req.DisplayName)
		assert.Nil(t, req.Email)

		_ = json.NewEncoder(w).Encode(User{
			ID:          "u-2",
			Username:    "bob",
			DisplayName: *req.DisplayName,
		})
	})

	display := "Robert"
	user, err := New(server.URL).WithToken("tok").UpdateUser("bob", &UpdateUserRequest{
		DisplayName: &display,
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert", user.DisplayName)
}

func TestDeleteUser(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/users/bob", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, New(server.URL).WithToken("tok").DeleteUser("bob"))
}

func TestResetUserPassword(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/users/bob/password", r.URL.Path)

		var req ChangePasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "reset-by-admin", req.NewPassword)
		// An admin reset carries no current password.
		assert.Empty(t, req.CurrentPassword)

		w.WriteHeader(http.StatusNoContent)
	})

	err := New(server.URL).WithToken("admin-tok").ResetUserPassword("bob", "reset-by-admin")
	require.NoError(t, err)
}

func TestChangeOwnPassword(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/users/me/password", r.URL.Path)

		var req ChangePasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-pw", req.CurrentPassword)
		assert.Equal(t, "new-pw-123", req.NewPassword)

		w.WriteHeader(http.StatusNoContent)
	})

	err := New(server.URL).WithToken("tok").ChangeOwnPassword("old-pw", "new-pw-123")
	require.NoError(t, err)
}

func TestGetCurrentUser(t *testing.T) {
	server := stub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/auth/me", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(User{ID: "u-1", Username: "alice", Role: "admin"})
	})

	user, err := New(server.URL).WithToken("tok").GetCurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "admin", user.Role)
}
