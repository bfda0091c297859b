package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"teledrive-web/internal/model"
)

// SendCode starts a login attempt for the given phone number. The
// backend creates a fresh session and pushes a login code to the
// user's messaging app; the returned token identifies that session
// for the rest of the flow.
func (c *Client) SendCode(ctx context.Context, phone string) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/send_code", "", map[string]string{"phone": phone}, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("%w: backend returned no session id", model.ErrBackendUnavailable)
	}
	return out.SessionID, nil
}

// CheckCode verifies a login code against the pending session.
func (c *Client) CheckCode(ctx context.Context, session string, code string) (model.CodeStatus, error) {
	var out struct {
		Status string `json:"status"`
	}
	body := map[string]string{"session_id": session, "code": code}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/check_code", session, body, &out); err != nil {
		return model.CodeUnknown, err
	}

	switch model.CodeStatus(out.Status) {
	case model.CodeAuthorized, model.CodePasswordRequired:
		return model.CodeStatus(out.Status), nil
	default:
		return model.CodeUnknown, nil
	}
}

// CheckPassword verifies the two-factor password. It reports whether
// the session became authorized.
func (c *Client) CheckPassword(ctx context.Context, session string, password string) (bool, error) {
	var out struct {
		Status string `json:"status"`
	}
	body := map[string]string{"session_id": session, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/check_password", session, body, &out); err != nil {
		return false, err
	}
	return out.Status == string(model.CodeAuthorized), nil
}

// FetchMe returns the profile bound to the session. An unauthorized
// session yields Me{Authorized: false}, not an error.
func (c *Client) FetchMe(ctx context.Context, session string) (model.Me, error) {
	var out model.Me
	if err := c.doJSON(ctx, http.MethodGet, "/me", session, nil, &out); err != nil {
		return model.Me{}, err
	}
	return out, nil
}

// Logout revokes the session on the backend.
func (c *Client) Logout(ctx context.Context, session string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", session, nil, nil)
}

// AvatarPhoto streams the profile photo for the session. The caller
// owns the returned body.
func (c *Client) AvatarPhoto(ctx context.Context, session string) (io.ReadCloser, string, error) {
	target := fmt.Sprintf("%s/me/photo?session_id=%s", c.baseURL, url.QueryEscape(session))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set(sessionHeader, session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", decodeError(resp)
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}
