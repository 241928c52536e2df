package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/slogx"
)

// fakeBackend imitates the betting API: resource routes accept only tokens in
// valid, and /api/token/refresh/ mints new ones.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu     sync.Mutex
	valid  map[string]bool
	routes map[string]http.HandlerFunc
	seen   map[string][]string // path -> bearer tokens, in arrival order
	bodies map[string][]string // path -> request bodies
	ids    map[string][]string // path -> X-Request-ID values

	refreshCalls atomic.Int32
	minted       atomic.Int32

	// refreshGate, when set, holds every refresh until it is closed.
	refreshGate chan struct{}

	// failRefresh decides per refresh token whether the exchange fails.
	failRefresh func(refreshToken string) bool

	// failStatus is the status of a failed exchange; 401 when zero.
	failStatus int

	// rejectMinted stops minted tokens from being accepted.
	rejectMinted bool

	// rotate makes refreshes return a new refresh token as well.
	rotate bool
}

// newFakeBackend applies opts before the server starts serving.
func newFakeBackend(t *testing.T, opts ...func(*fakeBackend)) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		t:      t,
		valid:  map[string]bool{},
		routes: map[string]http.HandlerFunc{},
		seen:   map[string][]string{},
		bodies: map[string][]string{},
		ids:    map[string][]string{},
	}

	for _, opt := range opts {
		opt(b)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", b.handleRefresh)
	mux.HandleFunc("/api/", b.handleResource)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)

	return b
}

func (b *fakeBackend) baseURL() string { return b.srv.URL + "/api" }

func (b *fakeBackend) accept(tokens ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tok := range tokens {
		b.valid[tok] = true
	}
}

// route registers an authenticated handler for path, e.g. "admin/bets/".
func (b *fakeBackend) route(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes["/api/"+path] = h
}

// public registers a handler that skips the bearer check.
func (b *fakeBackend) public(path string, h http.HandlerFunc) {
	b.route(path, h)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.valid[publicMarker+path] = true
}

const publicMarker = "public:"

func (b *fakeBackend) tokensSeen(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.seen["/api/"+path]...)
}

func (b *fakeBackend) bodiesSeen(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies["/api/"+path]...)
}

func (b *fakeBackend) idsSeen(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ids["/api/"+path]...)
}

func (b *fakeBackend) handleResource(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	path := strings.TrimPrefix(r.URL.Path, "/api/")

	b.mu.Lock()
	b.seen[r.URL.Path] = append(b.seen[r.URL.Path], token)
	b.bodies[r.URL.Path] = append(b.bodies[r.URL.Path], string(body))
	b.ids[r.URL.Path] = append(b.ids[r.URL.Path], r.Header.Get(headerRequestID))
	ok := b.valid[token] || b.valid[publicMarker+path]
	h := b.routes[r.URL.Path]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}
	if h == nil {
		writeJSON(w, http.StatusOK, map[string]string{"path": path})
		return
	}

	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad body"})
		return
	}

	if b.refreshGate != nil {
		select {
		case <-b.refreshGate:
		case <-r.Context().Done():
			return
		}
	}

	if b.failRefresh != nil && b.failRefresh(req.Refresh) {
		if b.failStatus != 0 {
			writeJSON(w, b.failStatus, map[string]string{"error": "boom"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}

	n := b.minted.Add(1)
	resp := refreshResponse{Access: fmt.Sprintf("fresh-%d", n)}
	if b.rotate {
		resp.Refresh = fmt.Sprintf("rotated-%d", n)
	}
	if !b.rejectMinted {
		b.accept(resp.Access)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// navCall is one recorded navigation.
type navCall struct {
	Role credstore.Role
	Path string
}

type recordingNavigator struct {
	mu    sync.Mutex
	calls []navCall
}

func (n *recordingNavigator) Navigate(_ context.Context, role credstore.Role, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navCall{Role: role, Path: path})
}

func (n *recordingNavigator) Calls() []navCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navCall(nil), n.calls...)
}

func newTestClient(t *testing.T, b *fakeBackend, nav Navigator) *Client {
	t.Helper()

	return New(b.baseURL(), Options{
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		Store:          credstore.NewMemoryStore(),
		Navigator:      nav,
		Logger:         slogx.Discard(),
		RefreshTimeout: 5 * time.Second,
	})
}

// seed stores a credential pair for role.
func seed(t *testing.T, c *Client, role credstore.Role, access, refresh string) {
	t.Helper()
	pair := credstore.Pair{AccessToken: access, RefreshToken: refresh, Profile: `{"username":"seeded"}`}
	require.NoError(t, credstore.SavePair(t.Context(), c.Store(), role, pair))
}

func stored(t *testing.T, c *Client, role credstore.Role, key credstore.Key) string {
	t.Helper()
	v, err := credstore.Lookup(t.Context(), c.Store(), role, key)
	require.NoError(t, err)
	return v
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
