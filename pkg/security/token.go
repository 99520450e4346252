package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"finfolio-backend/internal/apperrors"
)

// AccessClaims is the payload of a short-lived access token. Verification is
// a pure signature+expiry check; no store lookup.
type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh token. SessionID lets
// the server fetch the owning session by primary key instead of scanning a
// user's sessions for a matching salted hash. TokenVersion must equal the
// user's current refreshTokenVersion or the token is dead.
type RefreshClaims struct {
	UserID       string `json:"userId"`
	TokenVersion int    `json:"tokenVersion"`
	SessionID    string `json:"sessionId"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access and refresh tokens with distinct
// secrets, so a leaked access secret cannot forge refresh tokens.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewTokenCodec fails when either secret is empty. A missing secret is a
// configuration error: the process must not start.
func NewTokenCodec(accessSecret, refreshSecret string) (*TokenCodec, error) {
	if accessSecret == "" {
		return nil, apperrors.Configuration("access token secret is not configured")
	}
	if refreshSecret == "" {
		return nil, apperrors.Configuration("refresh token secret is not configured")
	}
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}, nil
}

func (c *TokenCodec) IssueAccessToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

func (c *TokenCodec) IssueRefreshToken(userID string, tokenVersion int, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID:       userID,
		TokenVersion: tokenVersion,
		SessionID:    sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
}

// VerifyAccessToken returns (nil, false) on any signature mismatch,
// malformed token or expiry. Callers get no reason; invalid is invalid.
func (c *TokenCodec) VerifyAccessToken(token string) (*AccessClaims, bool) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.accessSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}

// VerifyRefreshToken has the same uniform-invalid contract as
// VerifyAccessToken and additionally requires the session claim.
func (c *TokenCodec) VerifyRefreshToken(token string) (*RefreshClaims, bool) {
	claims := &RefreshClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.refreshSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid || claims.UserID == "" || claims.SessionID == "" {
		return nil, false
	}
	return claims, true
}
