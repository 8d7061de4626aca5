package auth

import "github.com/golang-jwt/jwt/v5"

// TokenType distinguishes the two tokens of a pair.
type TokenType string

const (
	// TokenTypeAccess marks short-lived tokens presented on API requests.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh marks long-lived tokens redeemable for new pairs.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the JWT payload carried by kvfs tokens. Alongside the
// registered claims it embeds enough of the user record to authorize a
// request without a database lookup.
type Claims struct {
	jwt.RegisteredClaims

	UserID             string    `json:"uid"`
	Username           string    `json:"username"`
	Role               string    `json:"role"`
	TokenType          TokenType `json:"token_type"`
	MustChangePassword bool      `json:"must_change_password,omitempty"`
}

// IsAccessToken reports whether the token authorizes API requests.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken reports whether the token can be redeemed for a new pair.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}

// IsAdmin reports whether the bearer has the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == string(RoleAdmin)
}
