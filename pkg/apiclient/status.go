package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/jwtx"
)

// SessionStatus describes what the store holds for one role. It is read
// locally; nothing is sent to the backend.
type SessionStatus struct {
	Role       credstore.Role  `json:"role"`
	LoggedIn   bool            `json:"logged_in"`
	Subject    string          `json:"subject,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	Expired    bool            `json:"expired"`
	HasRefresh bool            `json:"has_refresh"`
	Profile    json.RawMessage `json:"profile,omitempty"`
}

// Status inspects the role's stored access token. Tokens are not verified;
// the backend remains the authority on validity.
func (c *Client) Status(ctx context.Context, role credstore.Role, now time.Time) (*SessionStatus, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", credstore.ErrInvalidRole, role)
	}

	st := &SessionStatus{Role: role}

	access, err := credstore.Lookup(ctx, c.store, role, credstore.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load access token: %w", err)
	}
	refresh, err := credstore.Lookup(ctx, c.store, role, credstore.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	profile, err := credstore.Lookup(ctx, c.store, role, credstore.KeyProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	st.LoggedIn = access != ""
	st.HasRefresh = refresh != ""
	if json.Valid([]byte(profile)) {
		st.Profile = json.RawMessage(profile)
	}

	if access == "" {
		return st, nil
	}

	info, err := jwtx.Inspect(access)
	if err != nil {
		// Opaque tokens are still usable; there is just nothing to report.
		return st, nil
	}
	st.Subject = info.Subject
	st.Expired = info.Expired(now)
	if !info.ExpiresAt.IsZero() {
		exp := info.ExpiresAt
		st.ExpiresAt = &exp
	}

	return st, nil
}
