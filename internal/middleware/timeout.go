package middleware

import (
	"net/http"
	"time"
)

const timeoutBody = `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"The request took too long"}}`

// Timeout bounds how long a non-streaming handler may run. Media
// routes use StreamingTimeout instead, since this handler buffers the
// whole response.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = 30 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, timeoutBody)
	}
}
