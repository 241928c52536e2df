package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/idx"
)

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login signs a player in and stores the returned credentials and profile
// under the user role.
func (c *Client) Login(ctx context.Context, mobile, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.login(ctx, credstore.RoleUser, "login/", loginRequest{Mobile: mobile, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}

	profile, err := json.Marshal(resp.User)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	pair := credstore.Pair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Profile:      string(profile),
	}
	if err := c.startSession(ctx, credstore.RoleUser, pair); err != nil {
		return nil, err
	}

	return &resp, nil
}

// AdminLogin obtains an admin token pair and stores it under the admin role.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminTokenResponse, error) {
	var resp AdminTokenResponse
	if err := c.login(ctx, credstore.RoleAdmin, "admin/token/", adminLoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("admin token response carried no access token")
	}

	name := resp.Username
	if name == "" {
		name = username
	}
	profile, err := json.Marshal(AdminProfile{Username: name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	pair := credstore.Pair{
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
		Profile:      string(profile),
	}
	if err := c.startSession(ctx, credstore.RoleAdmin, pair); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Register creates a player account. It does not sign in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.login(ctx, credstore.RoleUser, "register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the role's credentials. Nothing is sent to the backend.
func (c *Client) Logout(ctx context.Context, role credstore.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", credstore.ErrInvalidRole, role)
	}
	if err := credstore.Clear(ctx, c.store, role); err != nil {
		return fmt.Errorf("failed to clear %s credentials: %w", role, err)
	}
	return nil
}

// GameStatus reports which games are open for betting. It needs no
// credentials.
func (c *Client) GameStatus(ctx context.Context) (GameStatus, error) {
	var status GameStatus
	if err := c.getJSON(ctx, credstore.RoleUser, "game-status/", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// login posts credentials without the role's stored token, so a stale
// session can neither leak into nor trigger a refresh for the sign-in.
func (c *Client) login(ctx context.Context, role credstore.Role, path string, body, target any) error {
	req, err := NewJSONRequest(role, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.ID = idx.New()

	resp, err := c.roundTrip(ctx, req, "")
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

// startSession replaces whatever the role held with pair.
func (c *Client) startSession(ctx context.Context, role credstore.Role, pair credstore.Pair) error {
	if err := credstore.Clear(ctx, c.store, role); err != nil {
		return fmt.Errorf("failed to clear %s credentials: %w", role, err)
	}
	if err := credstore.SavePair(ctx, c.store, role, pair); err != nil {
		return err
	}
	return nil
}
