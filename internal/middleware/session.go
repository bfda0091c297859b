package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"teledrive-web/internal/model"
	"teledrive-web/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "backend_session"

// WithSession reads the session cookie, verifies its signature and
// stores the backend session token in the request context. Requests
// without a valid cookie pass through unauthenticated; RequireSession
// draws the line per route.
func WithSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := manager.Read(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no verified session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(model.APIResponse{
				Success: false,
				Error: &model.APIError{
					Code:    "UNAUTHENTICATED",
					Message: "Sign in to continue",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionFromContext returns the backend session token, empty when
// the request is unauthenticated.
func SessionFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionContextKey).(string)
	return token
}
