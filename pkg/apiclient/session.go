package apiclient

import "github.com/aussiebroadwan/kingpanel/pkg/credstore"

// AdminSession groups the operations of the admin dashboard. It holds no
// state of its own; credentials live in the client's store.
type AdminSession struct {
	client *Client
}

// UserSession groups the operations of the player dashboard.
type UserSession struct {
	client *Client
}

// Admin returns the admin-scoped session.
func (c *Client) Admin() *AdminSession {
	return &AdminSession{client: c}
}

// User returns the player-scoped session.
func (c *Client) User() *UserSession {
	return &UserSession{client: c}
}

const (
	actionApprove = "approve"
	actionReject  = "reject"
)

func (s *AdminSession) role() credstore.Role { return credstore.RoleAdmin }
func (s *UserSession) role() credstore.Role  { return credstore.RoleUser }
