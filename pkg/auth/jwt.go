package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT signing and validation errors.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidTokenType    = errors.New("invalid token type")
	ErrTokenSigningFailed  = errors.New("failed to sign token")
	ErrInvalidSecretLength = errors.New("JWT secret must be at least 32 characters")
)

// Defaults applied by NewJWTService for zero-valued config fields.
const (
	defaultIssuer     = "kvfs"
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour

	minSecretLength = 32
)

// JWTConfig configures token issuance.
type JWTConfig struct {
	// Secret is the HMAC-SHA256 signing key, at least 32 characters.
	Secret string

	// Issuer is written into the "iss" claim and enforced on validation.
	Issuer string

	// AccessTokenDuration is the access token lifetime.
	AccessTokenDuration time.Duration

	// RefreshTokenDuration is the refresh token lifetime.
	RefreshTokenDuration time.Duration
}

// JWTService signs and validates the HS256 bearer tokens used by the API.
type JWTService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// TokenPair is one issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"` // always "Bearer"
	ExpiresIn    int64     `json:"expires_in"` // access token lifetime in seconds
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewJWTService validates the secret and fills in defaults.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if len(config.Secret) < minSecretLength {
		return nil, ErrInvalidSecretLength
	}

	s := &JWTService{
		secret:     []byte(config.Secret),
		issuer:     config.Issuer,
		accessTTL:  config.AccessTokenDuration,
		refreshTTL: config.RefreshTokenDuration,
	}
	if s.issuer == "" {
		s.issuer = defaultIssuer
	}
	if s.accessTTL == 0 {
		s.accessTTL = defaultAccessTTL
	}
	if s.refreshTTL == 0 {
		s.refreshTTL = defaultRefreshTTL
	}
	return s, nil
}

// GenerateTokenPair issues a fresh access/refresh pair for user.
func (s *JWTService) GenerateTokenPair(user *User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.accessTTL)

	accessToken, err := s.sign(user, TokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.sign(user, TokenTypeRefresh, now, now.Add(s.refreshTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

// sign builds and signs a single token. Every token gets a fresh uuid as
// its jti, so the two tokens of a pair never compare equal.
func (s *JWTService) sign(user *User, tokenType TokenType, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:             user.ID,
		Username:           user.Username,
		Role:               user.Role,
		TokenType:          tokenType,
		MustChangePassword: user.MustChangePassword,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", ErrTokenSigningFailed
	}
	return signed, nil
}

// ValidateToken checks signature, expiry, and issuer, and returns the
// claims. Only HS256-signed tokens are accepted.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil, !token.Valid:
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccessToken validates tokenString and requires the access type.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAccessToken() {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// ValidateRefreshToken validates tokenString and requires the refresh type.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken() {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// GetAccessTokenDuration returns the effective access token lifetime.
func (s *JWTService) GetAccessTokenDuration() time.Duration {
	return s.accessTTL
}

// GetRefreshTokenDuration returns the effective refresh token lifetime.
func (s *JWTService) GetRefreshTokenDuration() time.Duration {
	return s.refreshTTL
}
