package slogx

import (
	"net/http"
	"time"
)

// Transport logs every outgoing request at debug level using the logger
// carried in the request context. Headers are never logged; they carry
// bearer tokens.
type Transport struct {
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	log := FromContext(req.Context()).With(
		"method", req.Method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		log.Debug("http_request_failed", "duration_ms", duration, "error", err)
		return nil, err
	}

	log.Debug("http_request", "status", resp.StatusCode, "duration_ms", duration)
	return resp, nil
}
