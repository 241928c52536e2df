package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
)

func TestLogNavigator(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	nav := &LogNavigator{
		Logger:  slog.New(slog.NewJSONHandler(&buf, nil)),
		BaseURL: "https://panel.example.test",
	}

	nav.Navigate(t.Context(), credstore.RoleAdmin, "/admin")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "session_expired", entry["msg"])
	require.Equal(t, "admin", entry["role"])
	require.Equal(t, "https://panel.example.test/admin", entry["login_url"])
}

func TestNavigatorFunc(t *testing.T) {
	t.Parallel()

	var got navCall
	var nav Navigator = NavigatorFunc(func(_ context.Context, role credstore.Role, path string) {
		got = navCall{Role: role, Path: path}
	})

	nav.Navigate(t.Context(), credstore.RoleUser, "/login")
	require.Equal(t, navCall{Role: credstore.RoleUser, Path: "/login"}, got)
}
