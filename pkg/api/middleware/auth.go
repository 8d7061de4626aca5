// Package middleware provides HTTP middleware for the kvfs API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/pkg/auth"
)

type contextKey string

// claimsContextKey stores the validated claims of the current request.
const claimsContextKey contextKey = "claims"

// GetClaimsFromContext returns the JWT claims stored by JWTAuth, or nil
// when the request carries none. Handlers behind JWTAuth can rely on a
// non-nil result; anywhere else nil must be expected.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// rejection is the RFC 7807 problem body for auth failures, matching the
// shape the handlers package emits. handlers imports this package, so the
// type is declared here instead of being shared.
type rejection struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func reject(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	reject(w, http.StatusUnauthorized, "Unauthorized", detail)
}

func forbidden(w http.ResponseWriter, detail string) {
	reject(w, http.StatusForbidden, "Forbidden", detail)
}

// bearerToken pulls the token out of a "Bearer <token>" Authorization
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// JWTAuth rejects requests without a valid access token and stores the
// token's claims in the request context for downstream handlers.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authorization header required")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)

			// Tag the remaining log lines of this request with the caller.
			// Claims carry no numeric identity, so uid and gid stay zero
			// and are omitted from output.
			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithUser(claims.Username, 0, 0))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin blocks non-admin users. It must run after JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			switch {
			case claims == nil:
				unauthorized(w, "Authentication required")
			case !claims.IsAdmin():
				forbidden(w, "Admin access required")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequirePasswordChange blocks users flagged with a pending password change
// everywhere except allowedPaths, so they can still reach the endpoint that
// clears the flag. Paths are compared exactly after trailing-slash
// normalization; routers mounted under a prefix must pass full paths. It
// must run after JWTAuth.
func RequirePasswordChange(allowedPaths ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedPaths))
	for _, path := range allowedPaths {
		allowed[normalizePath(path)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				unauthorized(w, "Authentication required")
				return
			}

			if claims.MustChangePassword && !allowed[normalizePath(r.URL.Path)] {
				forbidden(w, "Password change required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// normalizePath strips a trailing slash so "/a/" and "/a" compare equal,
// keeping root "/" intact.
func normalizePath(path string) string {
	if trimmed := strings.TrimSuffix(path, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}
