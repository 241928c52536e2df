package credstore

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("credstore: not found")
	ErrInvalidRole = errors.New("credstore: invalid role")
)

// Role namespaces credentials. Admin and user sessions never share keys.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Roles lists every known role namespace.
var Roles = []Role{RoleAdmin, RoleUser}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string { return string(r) }

// ParseRole accepts "admin" or "user".
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Key names a single stored value inside a role namespace.
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyProfile      Key = "profile"
)

// AllKeys is everything a role namespace can hold.
var AllKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyProfile}

// Store is a role-namespaced key/value store for session credentials. Drivers
// (memory, sqlite, redis) implement it. Writes are last-write-wins.
type Store interface {
	// Get returns the value for key in role, or ErrNotFound.
	Get(ctx context.Context, role Role, key Key) (string, error)

	// Set stores value for key in role, replacing any previous value.
	Set(ctx context.Context, role Role, key Key, value string) error

	// Delete removes the given keys from role. Missing keys are not an error.
	Delete(ctx context.Context, role Role, keys ...Key) error

	// Close releases any underlying resources.
	Close() error
}

// Lookup is Get with ErrNotFound folded into an empty string.
func Lookup(ctx context.Context, s Store, role Role, key Key) (string, error) {
	v, err := s.Get(ctx, role, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Clear removes the access token, refresh token and cached profile of role.
func Clear(ctx context.Context, s Store, role Role) error {
	return s.Delete(ctx, role, AllKeys...)
}

// Pair is the credential pair written on login.
type Pair struct {
	AccessToken  string
	RefreshToken string
	Profile      string // cached profile JSON, optional
}

// SavePair writes every non-empty field of p into role.
func SavePair(ctx context.Context, s Store, role Role, p Pair) error {
	if p.AccessToken != "" {
		if err := s.Set(ctx, role, KeyAccessToken, p.AccessToken); err != nil {
			return fmt.Errorf("failed to store access token: %w", err)
		}
	}
	if p.RefreshToken != "" {
		if err := s.Set(ctx, role, KeyRefreshToken, p.RefreshToken); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	if p.Profile != "" {
		if err := s.Set(ctx, role, KeyProfile, p.Profile); err != nil {
			return fmt.Errorf("failed to store profile: %w", err)
		}
	}
	return nil
}
