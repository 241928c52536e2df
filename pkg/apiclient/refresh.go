package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/idx"
	"github.com/aussiebroadwan/kingpanel/pkg/slogx"
)

var (
	// ErrNoRefreshToken is the cause of a *RefreshError when a refresh was
	// due but the role holds no refresh token, e.g. after another request's
	// refresh already failed and cleared the session.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	errEmptyAccessToken = errors.New("refresh response carried no access token")
)

type refreshState int

const (
	stateIdle refreshState = iota
	stateRefreshing
)

func (s refreshState) String() string {
	if s == stateRefreshing {
		return "refreshing"
	}
	return "idle"
}

// pendingRequest is a request parked behind an in-flight refresh. outcome
// has capacity 1 so settling never blocks on a waiter that already gave up.
type pendingRequest struct {
	req     Request
	outcome chan refreshOutcome
}

type refreshOutcome struct {
	token string
	err   error
}

// refresher serialises token refreshes for one role.
//
// Invariants: queue is non-empty only while state is stateRefreshing, and
// the queue is fully resolved before state goes back to stateIdle. Both
// transitions happen under mu.
type refresher struct {
	role   credstore.Role
	client *Client

	mu    sync.Mutex
	state refreshState
	queue []*pendingRequest
}

// await returns a fresh access token for the role. The first caller becomes
// the leader and performs the exchange; everyone arriving while it runs is
// queued and receives the leader's outcome.
func (r *refresher) await(ctx context.Context, req Request) (string, error) {
	r.mu.Lock()
	return r.join(ctx, req)
}

// renew returns a token to replay req with after the backend rejected sent.
// While idle, a stored token that differs from sent was written by a refresh
// or login that finished after req went out, and it is used without another
// exchange. The check holds mu so it cannot interleave with settle.
func (r *refresher) renew(ctx context.Context, req Request, sent string) (string, error) {
	r.mu.Lock()
	if r.state == stateIdle {
		current, err := credstore.Lookup(ctx, r.client.store, r.role, credstore.KeyAccessToken)
		if err != nil {
			r.mu.Unlock()
			return "", fmt.Errorf("failed to load access token: %w", err)
		}
		if current != "" && current != sent {
			r.mu.Unlock()
			slogx.FromContext(ctx).Debug("replaying with token refreshed in flight")
			return current, nil
		}
	}
	return r.join(ctx, req)
}

// join queues req behind a running refresh or starts one. It must be called
// with mu held and releases it.
func (r *refresher) join(ctx context.Context, req Request) (string, error) {
	log := slogx.FromContext(ctx)

	if r.state == stateRefreshing {
		p := &pendingRequest{req: req, outcome: make(chan refreshOutcome, 1)}
		r.queue = append(r.queue, p)
		queued := len(r.queue)
		r.mu.Unlock()

		log.Debug("waiting for token refresh", "queued", queued)

		select {
		case out := <-p.outcome:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.state = stateRefreshing
	r.mu.Unlock()

	log.Info("refreshing access token")

	token, err := r.client.refresh(ctx, r.role)
	if err != nil {
		if !errors.Is(err, ErrNoRefreshToken) {
			r.client.expireSession(ctx, r.role, err)
		}
	} else {
		log.Info("access token refreshed")
	}

	r.settle(refreshOutcome{token: token, err: err})
	return token, err
}

// settle hands out to every queued request in enqueue order and returns
// the refresher to idle.
func (r *refresher) settle(out refreshOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.queue {
		p.outcome <- out
	}
	r.queue = nil
	r.state = stateIdle
}

// snapshot reports the current state and queue length.
func (r *refresher) snapshot() (refreshState, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, len(r.queue)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// refresh exchanges the role's refresh token for a new access token and
// stores it. The exchange is detached from ctx cancellation and bounded by
// the refresh timeout, since other requests may be waiting on it.
func (c *Client) refresh(ctx context.Context, role credstore.Role) (string, error) {
	refreshToken, err := credstore.Lookup(ctx, c.store, role, credstore.KeyRefreshToken)
	if err != nil {
		return "", &RefreshError{Role: role, Err: fmt.Errorf("failed to load refresh token: %w", err)}
	}
	if refreshToken == "" {
		return "", &RefreshError{Role: role, Err: ErrNoRefreshToken}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	req, err := NewJSONRequest(role, http.MethodPost, c.refreshPath, refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", &RefreshError{Role: role, Err: err}
	}
	req.ID = idx.New()

	resp, err := c.roundTrip(ctx, req, "")
	if err != nil {
		return "", &RefreshError{Role: role, Err: err}
	}

	var out refreshResponse
	if err := decodeJSON(resp, &out); err != nil {
		return "", &RefreshError{Role: role, Err: err}
	}
	if out.Access == "" {
		return "", &RefreshError{Role: role, Err: errEmptyAccessToken}
	}

	// Rotated refresh tokens replace the old one; otherwise it is kept.
	pair := credstore.Pair{AccessToken: out.Access, RefreshToken: out.Refresh}
	if err := credstore.SavePair(ctx, c.store, role, pair); err != nil {
		return "", &RefreshError{Role: role, Err: err}
	}

	return out.Access, nil
}

// Refresh forces a token refresh for role, joining one already in flight.
// A failure is handled exactly like one triggered by a 401.
func (c *Client) Refresh(ctx context.Context, role credstore.Role) error {
	r, ok := c.refreshers[role]
	if !ok {
		return fmt.Errorf("%w: %q", credstore.ErrInvalidRole, role)
	}

	ctx = slogx.WithContext(ctx, c.log(ctx).With("role", role.String()))
	_, err := r.await(ctx, Request{Role: role})
	return err
}

// expireSession clears the role's credentials and navigates to its entry
// surface. It runs once per failed refresh, on the leader only.
func (c *Client) expireSession(ctx context.Context, role credstore.Role, cause error) {
	ctx = context.WithoutCancel(ctx)
	log := slogx.FromContext(ctx)

	log.Warn("token refresh failed, clearing session", "error", cause)

	if err := credstore.Clear(ctx, c.store, role); err != nil {
		log.Error("failed to clear credentials", "error", err)
	}

	c.navigator.Navigate(ctx, role, c.surfaces[role])
}
