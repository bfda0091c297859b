// Package session persists the opaque backend session token across
// page reloads. The token is wrapped in a signed cookie so the browser
// never sees it in a tamperable form; clearing the cookie is the only
// way to destroy the session short of a backend logout.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid session cookie")
)

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the per-browser session cookie. At most
// one token value is active per browser; issuing a new one replaces
// the previous cookie.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

func NewManager(secret string, ttl time.Duration, cookieName string, secure bool) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if cookieName == "" {
		cookieName = "td_session"
	}
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}

	return &Manager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}, nil
}

// Issue signs token and sets it as the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, token string) error {
	signed, err := m.Sign(token)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Read extracts and verifies the backend session token from the
// request's cookie. A missing cookie yields ErrNoSession; a tampered
// or expired one yields ErrInvalidSession.
func (m *Manager) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", ErrNoSession
	}

	return m.Parse(cookie.Value)
}

// Clear expires the session cookie. Subsequent authenticated calls
// fail until a new token is issued.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sign wraps a backend session token in a signed JWT.
func (m *Manager) Sign(token string) (string, error) {
	now := time.Now()
	c := claims{
		SessionID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Parse verifies a signed cookie value and returns the wrapped token.
func (m *Manager) Parse(value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidSession
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || strings.TrimSpace(c.SessionID) == "" {
		return "", ErrInvalidSession
	}

	return c.SessionID, nil
}
