package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
)

func TestAdminLogin(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(t)
	b.public("admin/token/", func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, AdminTokenResponse{Access: "A1", Refresh: "R1", Username: req.Username})
	})

	t.Run("stores the pair and profile", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, b, nil)
		seed(t, c, credstore.RoleAdmin, "old-access", "old-refresh")

		resp, err := c.AdminLogin(t.Context(), "boss", "s3cret")
		require.NoError(t, err)
		require.Equal(t, "boss", resp.Username)

		require.Equal(t, "A1", stored(t, c, credstore.RoleAdmin, credstore.KeyAccessToken))
		require.Equal(t, "R1", stored(t, c, credstore.RoleAdmin, credstore.KeyRefreshToken))
		require.JSONEq(t, `{"username":"boss"}`, stored(t, c, credstore.RoleAdmin, credstore.KeyProfile))

		// Sign-in requests never carry the previous session's token.
		for _, tok := range b.tokensSeen("admin/token/") {
			require.Empty(t, tok)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		nav := &recordingNavigator{}
		c := newTestClient(t, b, nav)

		_, err := c.AdminLogin(t.Context(), "boss", "guess")
		require.True(t, IsUnauthorized(err))
		require.Contains(t, err.Error(), "No active account")
		require.Empty(t, stored(t, c, credstore.RoleAdmin, credstore.KeyAccessToken))
		require.Empty(t, nav.Calls())
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(t)
	b.public("login/", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Mobile != "9876543210" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid mobile or password"})
			return
		}
		writeJSON(w, http.StatusOK, LoginResponse{
			Message:      "Login successful",
			AccessToken:  "U1",
			RefreshToken: "UR1",
			User:         UserInfo{ID: 3, Username: "ravi", Mobile: req.Mobile, ReferralCode: "RAVI42"},
		})
	})

	c := newTestClient(t, b, nil)
	seed(t, c, credstore.RoleAdmin, "A1", "R1")

	resp, err := c.Login(t.Context(), "9876543210", "pw")
	require.NoError(t, err)
	require.Equal(t, "ravi", resp.User.Username)

	require.Equal(t, "U1", stored(t, c, credstore.RoleUser, credstore.KeyAccessToken))
	require.Equal(t, "UR1", stored(t, c, credstore.RoleUser, credstore.KeyRefreshToken))

	var profile UserInfo
	require.NoError(t, json.Unmarshal([]byte(stored(t, c, credstore.RoleUser, credstore.KeyProfile)), &profile))
	require.Equal(t, int64(3), profile.ID)
	require.Equal(t, "RAVI42", profile.ReferralCode)

	require.Equal(t, "A1", stored(t, c, credstore.RoleAdmin, credstore.KeyAccessToken), "admin session untouched")

	_, err = c.Login(t.Context(), "000", "pw")
	require.Equal(t, http.StatusBadRequest, StatusCode(err))
	require.Contains(t, err.Error(), "Invalid mobile or password")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeBackend(t), nil)
	seed(t, c, credstore.RoleAdmin, "A1", "R1")
	seed(t, c, credstore.RoleUser, "U1", "UR1")

	require.NoError(t, c.Logout(t.Context(), credstore.RoleUser))

	for _, key := range credstore.AllKeys {
		require.Empty(t, stored(t, c, credstore.RoleUser, key))
	}
	require.Equal(t, "A1", stored(t, c, credstore.RoleAdmin, credstore.KeyAccessToken))

	require.ErrorIs(t, c.Logout(t.Context(), credstore.Role("root")), credstore.ErrInvalidRole)
}

func TestRegisterAndGameStatus(t *testing.T) {
	t.Parallel()

	b := newFakeBackend(t)
	registered := make(chan RegisterRequest, 1)
	b.public("register/", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		registered <- req
		writeJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully"})
	})
	b.public("game-status/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"gali":true,"disawer":false}`)
	})

	c := newTestClient(t, b, nil)

	msg, err := c.Register(t.Context(), RegisterRequest{
		Username:     "ravi",
		Mobile:       "9876543210",
		Password:     "pw",
		ReferralCode: "BOSS1",
	})
	require.NoError(t, err)
	require.Equal(t, "User registered successfully", msg.Message)

	req := <-registered
	require.Equal(t, "BOSS1", req.ReferralCode)
	require.Empty(t, stored(t, c, credstore.RoleUser, credstore.KeyAccessToken), "registering does not sign in")

	status, err := c.GameStatus(t.Context())
	require.NoError(t, err)
	require.JSONEq(t, "true", string(status["gali"]))
	require.JSONEq(t, "false", string(status["disawer"]))
}
