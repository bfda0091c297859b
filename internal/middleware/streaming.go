package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// StreamingTimeout bounds media transfers without buffering them the
// way http.TimeoutHandler does. Two clocks run at once: a hard cap on
// the whole transfer, and an idle cutoff that kills the connection
// when no bytes move for the given period.
func StreamingTimeout(max, idle time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), max)
			defer cancel()

			rc := http.NewResponseController(w)
			hard := time.Now().Add(max)
			_ = rc.SetWriteDeadline(hard)
			_ = rc.SetReadDeadline(hard)

			tw := &transferWriter{ResponseWriter: w, rc: rc, idle: idle, cancel: cancel}
			tw.touch()
			defer tw.stop()

			next.ServeHTTP(tw, r.WithContext(ctx))
		})
	}
}

// transferWriter restarts an inactivity timer on every Write; when the
// timer fires, the write deadline snaps to now so blocked I/O fails
// instead of holding the connection.
type transferWriter struct {
	http.ResponseWriter
	rc     *http.ResponseController
	idle   time.Duration
	cancel context.CancelFunc

	mu    sync.Mutex
	timer *time.Timer
}

func (tw *transferWriter) touch() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.idle, func() {
		_ = tw.rc.SetWriteDeadline(time.Now())
		tw.cancel()
	})
}

func (tw *transferWriter) stop() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timer != nil {
		tw.timer.Stop()
	}
}

func (tw *transferWriter) Write(b []byte) (int, error) {
	tw.touch()
	return tw.ResponseWriter.Write(b)
}

func (tw *transferWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (tw *transferWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
