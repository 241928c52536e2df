// Package jwtx reads the claims of access tokens issued by the betting
// backend. The client never holds the signing key, so nothing here verifies
// signatures: the backend stays the authority and answers 401 for bad tokens.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformed = errors.New("jwtx: malformed token")

// Claims mirrors the payload of the backend's access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is "access" or "refresh".
	TokenType string `json:"token_type,omitempty"`

	// UserID is the numeric primary key of the account.
	UserID any `json:"user_id,omitempty"`
}

// Info is the subset of claims the client cares about.
type Info struct {
	Subject   string
	TokenType string
	ExpiresAt time.Time // zero when the token carries no exp
	IssuedAt  time.Time
}

// Inspect decodes raw without verifying its signature.
func Inspect(raw string) (Info, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	info := Info{
		Subject:   claims.Subject,
		TokenType: claims.TokenType,
	}
	if info.Subject == "" && claims.UserID != nil {
		info.Subject = fmt.Sprint(claims.UserID)
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	return info, nil
}

// Expired reports whether the token has passed its exp at now. Tokens without
// an exp never expire.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// ExpiresIn is the remaining lifetime at now, zero if already expired or
// unknown.
func (i Info) ExpiresIn(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || !now.Before(i.ExpiresAt) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}
