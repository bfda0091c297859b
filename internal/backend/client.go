// Package backend is the typed client for the external TeleDrive API.
// One method per remote operation, no retries, no caching; callers are
// expected to re-fetch the affected folder listing after every
// mutating call. The session token is passed explicitly on each call
// so the client can serve any number of concurrent sessions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"teledrive-web/internal/model"
	"teledrive-web/pkg/apierror"
)

const sessionHeader = "X-Session-Id"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// BaseURL returns the backend origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out (when out is non-nil). The session header is
// attached when session is non-empty.
func (c *Client) doJSON(ctx context.Context, method string, path string, session string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}

	return nil
}

// decodeError maps a non-2xx backend response to a domain error. The
// backend reports errors as JSON with a `detail` string; an absent
// detail yields a generic failure message.
func decodeError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", model.ErrUnauthenticated, payload.Detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrNotFound, payload.Detail)
	}

	return apierror.FromDetail(payload.Detail, resp.StatusCode)
}
