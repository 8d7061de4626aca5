package apiclient

import (
	"time"
)

// LoginRequest is the body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the token pair issued by the login and refresh
// endpoints, together with the authenticated user.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"` // lifetime, seconds
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Login exchanges a username and password for a token pair.
func (c *Client) Login(username, password string) (*TokenResponse, error) {
	return postResource[TokenResponse](c, "/api/v1/auth/login", LoginRequest{
		Username: username,
		Password: password,
	})
}

// RefreshToken redeems a refresh token for a fresh token pair.
func (c *Client) RefreshToken(refreshToken string) (*TokenResponse, error) {
	return postResource[TokenResponse](c, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: refreshToken,
	})
}
