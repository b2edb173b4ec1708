// Package apiclient is the typed HTTP client for the remote salon API. Every
// persistent noun (appointments, customers) lives behind that API; this
// package only translates between in-process values and the wire format.
// Nothing here retries; retry policy belongs to the cache coordinator.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RequestError is returned for any non-success HTTP status. Body carries the
// server's response text verbatim so the UI can surface the server's own
// message (the API returns human-readable validation errors).
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api request failed: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the remote salon API. The session cookie of the browsing
// user is attached to every request so the API sees the same identity the
// user logged in with.
type Client struct {
	base       string       // base URL, no trailing slash
	cookieName string       // name of the session cookie to forward
	http       *http.Client // underlying transport
}

// New constructs a Client for the given base URL. cookieName is the session
// cookie the remote API authenticates with.
func New(baseURL, cookieName string) *Client {
	return &Client{
		base:       strings.TrimRight(baseURL, "/"),
		cookieName: cookieName,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// do issues a request and decodes a JSON response into out (when out is
// non-nil). Any non-2xx status is converted into a *RequestError carrying the
// response body.
func (c *Client) do(ctx context.Context, method, path, cookie string, body interface{}, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: cookie})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
