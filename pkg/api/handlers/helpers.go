package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/pkg/auth"
	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/kv"
)

// decodeJSONBody decodes a JSON request body into v. Malformed input gets
// a 400 and reports false; the caller just returns.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// pathUsername extracts the {username} route parameter. An empty value
// gets a 400 and reports false.
func pathUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := chi.URLParam(r, "username")
	if username == "" {
		BadRequest(w, "Username is required")
		return "", false
	}
	return username, true
}

// hashPasswordOrReject hashes a candidate password. The policy errors
// (too short, too long) become a 400 carrying the policy message;
// anything else becomes a 500. Reports false after writing a response.
func hashPasswordOrReject(w http.ResponseWriter, password string) (string, bool) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			BadRequest(w, err.Error())
			return "", false
		}
		InternalServerError(w, "Failed to hash password")
		return "", false
	}
	return hash, true
}

// getUserOrError fetches a user, mapping absence to a 404 and any store
// failure to a 500. Reports false after writing a response.
func getUserOrError(w http.ResponseWriter, r *http.Request, store *auth.Store, username string) (*auth.User, bool) {
	user, err := store.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			NotFound(w, "User not found")
			return nil, false
		}
		InternalServerError(w, "Failed to get user")
		return nil, false
	}
	return user, true
}

// getUserOrUnauthorized is getUserOrError for auth endpoints, where a
// vanished user means the credentials no longer identify anyone: absence
// maps to a 401.
func getUserOrUnauthorized(w http.ResponseWriter, r *http.Request, store *auth.Store, username string) (*auth.User, bool) {
	user, err := store.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			Unauthorized(w, "User no longer exists")
			return nil, false
		}
		InternalServerError(w, "Failed to get user")
		return nil, false
	}
	return user, true
}

// writeFilesystemError maps a filesystem error to the matching problem
// response. The filesystem wraps every failure in *fs.Error, so the path and
// operation are already part of the message; the response detail repeats only
// the classification to avoid leaking store internals to clients.
func writeFilesystemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fs.ErrInvalidArgument):
		BadRequest(w, "Invalid path or arguments")
	case errors.Is(err, fs.ErrNotFound):
		NotFound(w, "Path not found")
	case errors.Is(err, fs.ErrIsDirectory):
		Conflict(w, "Path is a directory")
	case errors.Is(err, fs.ErrNotADirectory):
		Conflict(w, "Path is not a directory")
	case errors.Is(err, fs.ErrConflict):
		Conflict(w, "Path already exists with a different type")
	case errors.Is(err, fs.ErrDirectoryNotEmpty):
		Conflict(w, "Directory is not empty")
	case errors.Is(err, kv.ErrStoreClosed):
		logger.ErrorCtx(r.Context(), "filesystem request against closed store", logger.Err(err))
		ServiceUnavailable(w, "Store is unavailable")
	default:
		logger.ErrorCtx(r.Context(), "filesystem operation failed", logger.Err(err))
		InternalServerError(w, "Filesystem operation failed")
	}
}
