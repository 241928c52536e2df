package apiclient

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/slogx"
)

// Navigator sends the operator to a role's login surface after the session
// for that role has been lost.
type Navigator interface {
	Navigate(ctx context.Context, role credstore.Role, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, role credstore.Role, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, role credstore.Role, path string) {
	f(ctx, role, path)
}

// DefaultEntrySurfaces returns the login paths of the dashboard.
func DefaultEntrySurfaces() map[credstore.Role]string {
	return map[credstore.Role]string{
		credstore.RoleAdmin: "/admin",
		credstore.RoleUser:  "/login",
	}
}

// LogNavigator reports navigation as a session_expired log event. It suits
// terminals and background jobs where nothing can be navigated.
type LogNavigator struct {
	Logger *slog.Logger

	// BaseURL, when set, is prefixed to the path to form login_url.
	BaseURL string
}

func (n *LogNavigator) Navigate(ctx context.Context, role credstore.Role, path string) {
	log := n.Logger
	if log == nil {
		log = slogx.FromContext(ctx)
	}

	log.Warn("session_expired",
		"role", role.String(),
		"login_url", n.BaseURL+path,
	)
}
