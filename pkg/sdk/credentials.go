package sdk

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client can read from a bearer token without the
// server's key. It is informational only and never used for authorization.
type TokenInfo struct {
	Subject   string
	Username  string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type accessClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken decodes a JWT access token without verifying its signature.
func InspectToken(token string) (*TokenInfo, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	info := &TokenInfo{Subject: claims.Subject, Username: claims.Username}
	if info.Username == "" {
		info.Username = claims.Email
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info, nil
}

// HasExpiry reports whether the token carried an exp claim.
func (t *TokenInfo) HasExpiry() bool {
	return !t.ExpiresAt.IsZero()
}

func (t *TokenInfo) IsExpired() bool {
	return t.HasExpiry() && time.Now().After(t.ExpiresAt)
}
