package apiclient

import "net/http"

// APIError is an RFC 7807 problem document returned by the API.
type APIError struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}

// IsAuthError returns true for authentication and authorization failures.
func (e *APIError) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsNotFound returns true if the requested resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsConflict returns true for conflicts such as duplicate users, non-empty
// directories, or type mismatches between files and directories.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

// IsBadRequest returns true for malformed or invalid requests.
func (e *APIError) IsBadRequest() bool {
	return e.Status == http.StatusBadRequest
}
