package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
)

var (
	// ErrRefreshFailed matches every *RefreshError via errors.Is.
	ErrRefreshFailed = errors.New("apiclient: token refresh failed")

	// ErrInvalidInput is returned by typed operations that reject arguments
	// before anything is sent.
	ErrInvalidInput = errors.New("apiclient: invalid input")
)

// ============================================================================
// RefreshError - fatal session failure
// ============================================================================

// RefreshError is returned to the request that triggered a refresh and to
// every request queued behind it when the refresh exchange fails. By the time
// a caller sees it, the role's credentials are already cleared.
type RefreshError struct {
	Role credstore.Role
	Err  error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s session refresh failed: %v", e.Role, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

func (e *RefreshError) Is(target error) bool { return target == ErrRefreshFailed }

// ============================================================================
// APIError - non-2xx responses from resource endpoints
// ============================================================================

// APIError is a non-2xx response decoded by a typed operation.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err if it is (or wraps) an *APIError,
// or 0 otherwise.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 that survived the refresh
// protocol (no refresh token stored, or the replay was rejected too).
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// maxErrorBody caps how much of an unrecognised error body ends up in an
// error message.
const maxErrorBody = 256

// parseErrorResponse turns a non-2xx response body into an *APIError. The
// backend answers with {"error": ...} from hand-written views and
// {"detail": ...} from framework views; validation failures come back as a
// field -> messages object.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var known struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &known); err == nil {
		switch {
		case known.Error != "":
			apiErr.Message = known.Error
		case known.Detail != "":
			apiErr.Message = known.Detail
		case known.Message != "":
			apiErr.Message = known.Message
		}
	}

	if apiErr.Message == "" {
		var fields map[string][]string
		if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
			apiErr.Message = formatFieldErrors(fields)
		}
	}

	if apiErr.Message == "" {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		apiErr.Message = text
	}

	return apiErr
}

func formatFieldErrors(fields map[string][]string) string {
	parts := make([]string, 0, len(fields))
	for field, msgs := range fields {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	// Map order is random; sort for stable messages.
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
