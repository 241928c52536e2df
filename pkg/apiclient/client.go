package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/idx"
	"github.com/aussiebroadwan/kingpanel/pkg/slogx"
)

const (
	DefaultRefreshPath    = "/token/refresh/"
	DefaultRefreshTimeout = 10 * time.Second
	DefaultHTTPTimeout    = 10 * time.Second

	headerRequestID = "X-Request-ID"
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// HTTPClient performs the requests. Defaults to a client with a 10s
	// timeout whose transport logs through slogx.
	HTTPClient *http.Client

	// Store holds credentials. Defaults to an in-memory store.
	Store credstore.Store

	// Navigator is told where to send the operator once a session cannot be
	// recovered. Defaults to a LogNavigator.
	Navigator Navigator

	// Logger overrides the logger carried in the request context.
	Logger *slog.Logger

	RefreshPath    string
	RefreshTimeout time.Duration

	// EntrySurfaces maps a role to its login path. Missing roles fall back to
	// DefaultEntrySurfaces.
	EntrySurfaces map[credstore.Role]string

	// RateLimit is the outbound request rate per second. Zero disables
	// limiting.
	RateLimit float64
	RateBurst int
}

// Client is the single gateway to the backend. It attaches bearer tokens,
// refreshes them on 401 at most once at a time per role, and replays the
// requests that were waiting on the refresh.
//
// A Client is safe for concurrent use.
type Client struct {
	BaseURL string

	httpClient     *http.Client
	store          credstore.Store
	navigator      Navigator
	logger         *slog.Logger
	refreshPath    string
	refreshTimeout time.Duration
	surfaces       map[credstore.Role]string
	limiter        *rate.Limiter

	// refreshers is populated once in New and only read afterwards.
	refreshers map[credstore.Role]*refresher
}

// New creates a Client rooted at baseURL, e.g. "http://127.0.0.1:8000/api".
func New(baseURL string, opts Options) *Client {
	c := &Client{
		BaseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     opts.HTTPClient,
		store:          opts.Store,
		navigator:      opts.Navigator,
		logger:         opts.Logger,
		refreshPath:    opts.RefreshPath,
		refreshTimeout: opts.RefreshTimeout,
		surfaces:       DefaultEntrySurfaces(),
		refreshers:     make(map[credstore.Role]*refresher, len(credstore.Roles)),
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   DefaultHTTPTimeout,
			Transport: &slogx.Transport{},
		}
	}
	if c.store == nil {
		c.store = credstore.NewMemoryStore()
	}
	if c.navigator == nil {
		c.navigator = &LogNavigator{Logger: opts.Logger}
	}
	if c.refreshPath == "" {
		c.refreshPath = DefaultRefreshPath
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = DefaultRefreshTimeout
	}
	for role, path := range opts.EntrySurfaces {
		c.surfaces[role] = path
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	for _, role := range credstore.Roles {
		c.refreshers[role] = &refresher{role: role, client: c}
	}

	return c
}

// Store returns the credential store backing the client.
func (c *Client) Store() credstore.Store {
	return c.store
}

// Send performs req with the role's stored credentials.
//
// Any response other than 401 is returned as-is, including other non-2xx
// statuses; transport errors are returned wrapped and never retried. A 401 on
// a request that has not been retried yet triggers the refresh protocol: the
// request waits for a single refresh of its role's token and is replayed once
// with the new token. If the refresh fails, the role's credentials are
// cleared, the Navigator is called and a *RefreshError is returned.
//
// The caller must close the returned response body.
func (c *Client) Send(ctx context.Context, req Request) (*http.Response, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", credstore.ErrInvalidRole, req.Role)
	}
	if req.ID.IsZero() {
		req.ID = idx.New()
	}

	ctx = slogx.WithContext(ctx, c.log(ctx).With(
		"role", req.Role.String(),
		"req_id", req.ID.String(),
	))

	token, err := credstore.Lookup(ctx, c.store, req.Role, credstore.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load access token: %w", err)
	}

	return c.dispatch(ctx, attempt{req: req}, token)
}

func (c *Client) dispatch(ctx context.Context, a attempt, token string) (*http.Response, error) {
	resp, err := c.roundTrip(ctx, a.req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || a.retried {
		return resp, nil
	}

	refreshToken, err := credstore.Lookup(ctx, c.store, a.req.Role, credstore.KeyRefreshToken)
	if err != nil {
		closeBody(resp)
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	if refreshToken == "" {
		return resp, nil
	}
	closeBody(resp)

	fresh, err := c.refreshers[a.req.Role].renew(ctx, a.req, token)
	if err != nil {
		return nil, err
	}

	return c.dispatch(ctx, a.retry(), fresh)
}

// roundTrip sends one copy of req. An empty token leaves any caller supplied
// Authorization header untouched.
func (c *Client) roundTrip(ctx context.Context, req Request, token string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.endpoint(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if !req.ID.IsZero() {
		httpReq.Header.Set(headerRequestID, req.ID.String())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// endpoint joins path onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.BaseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slogx.FromContext(ctx)
}

// closeBody drains a little of the body so the connection can be reused.
func closeBody(resp *http.Response) {
	_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
	_ = resp.Body.Close()
}
