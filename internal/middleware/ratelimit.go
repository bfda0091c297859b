package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"teledrive-web/internal/model"
)

// visitor holds both budgets for one client address. The auth budget
// is far tighter: login-code attempts are the abuse surface.
type visitor struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware enforces per-IP request budgets. Media streaming
// and the websocket are exempt; one long download should not starve
// the API budget.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimitMiddleware(generalRPM, authRPM int) *RateLimitMiddleware {
	if generalRPM <= 0 {
		generalRPM = 100
	}
	if authRPM <= 0 {
		authRPM = 10
	}

	return &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		visitors:   map[string]*visitor{},
	}
}

var exemptPrefixes = []string{
	"/api/v1/files/thumbnail",
	"/api/v1/files/download",
	"/api/v1/ws",
}

func exemptPath(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.ToLower(r.URL.Path)
		if exemptPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		v := m.lookup(extractClientIP(r))

		budget := v.general
		if strings.HasPrefix(path, "/api/v1/auth") {
			budget = v.auth
		}

		if !budget.Allow() {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(model.APIResponse{
				Success: false,
				Error: &model.APIError{
					Code:    "RATE_LIMITED",
					Message: "Too many requests",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) lookup(ip string) *visitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{
			general: rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.generalRPM)), m.generalRPM),
			auth:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.authRPM)), m.authRPM),
		}
		m.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	m.sweepLocked()
	return v
}

// sweepLocked evicts idle visitors once the map gets large. Callers
// hold m.mu.
func (m *RateLimitMiddleware) sweepLocked() {
	if len(m.visitors) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, v := range m.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(m.visitors, ip)
		}
	}
}

func extractClientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}
	return r.RemoteAddr
}
