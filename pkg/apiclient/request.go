package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/idx"
)

// Request describes one call to the backend. It is treated as immutable: the
// client copies it into a fresh *http.Request for every dispatch, which is
// what makes replay after a refresh possible.
type Request struct {
	// Role selects the credential namespace used for this call.
	Role credstore.Role

	Method string

	// Path is resolved against the client's BaseURL. Leading slashes are
	// optional, "admin/bets/" and "/admin/bets/" are the same endpoint.
	Path string

	Query  url.Values
	Header http.Header

	// Body is kept as bytes so it can be sent more than once.
	Body []byte

	// ID is sent as X-Request-ID and appears in log lines. Send assigns one
	// when it is zero.
	ID idx.ID
}

// NewRequest builds a body-less request.
func NewRequest(role credstore.Role, method, path string) Request {
	return Request{
		Role:   role,
		Method: method,
		Path:   path,
	}
}

// NewJSONRequest builds a request whose body is v encoded as JSON.
func NewJSONRequest(role credstore.Role, method, path string, v any) (Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	return Request{
		Role:   role,
		Method: method,
		Path:   path,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   body,
	}, nil
}

// attempt wraps a Request on its way through the retry path. A request is
// replayed at most once after a 401.
type attempt struct {
	req     Request
	retried bool
}

func (a attempt) retry() attempt {
	return attempt{req: a.req, retried: true}
}
