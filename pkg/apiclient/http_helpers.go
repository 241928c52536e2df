package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
)

// decodeJSON reads resp and decodes it into target. Non-2xx responses come
// back as *APIError. A nil target only checks the status.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp, bodyBytes)
	}

	if target == nil || len(bodyBytes) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// do sends a request for role and decodes the reply into target.
func (c *Client) do(ctx context.Context, req Request, target any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

func (c *Client) getJSON(ctx context.Context, role credstore.Role, path string, query url.Values, target any) error {
	req := NewRequest(role, http.MethodGet, path)
	req.Query = query
	return c.do(ctx, req, target)
}

func (c *Client) postJSON(ctx context.Context, role credstore.Role, path string, body, target any) error {
	req, err := NewJSONRequest(role, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.do(ctx, req, target)
}
