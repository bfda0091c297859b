package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// errorBodyLimit caps how much of a failed response is retained for
// the log line.
const errorBodyLimit = 4096

// Logging tags every request with an id, times it, and logs one line
// per request at a level matching the status class. For 4xx/5xx the
// error envelope is decoded so the code and message land in the log.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &loggedResponse{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", r.RemoteAddr,
		}

		if rec.status >= 400 {
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}
			attrs = append(attrs, errorAttrs(rec.body.Bytes())...)
		}

		switch {
		case rec.status >= 500:
			slog.Error("request", attrs...)
		case rec.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

// errorAttrs pulls code/message/details out of an error envelope body.
func errorAttrs(body []byte) []any {
	if len(body) == 0 {
		return nil
	}

	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}

	attrs := []any{
		"error_code", envelope.Error.Code,
		"error_message", envelope.Error.Message,
	}
	if envelope.Error.Details != "" {
		attrs = append(attrs, "error_details", envelope.Error.Details)
	}
	return attrs
}

type loggedResponse struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (lr *loggedResponse) WriteHeader(code int) {
	if lr.wroteHeader {
		return
	}
	lr.status = code
	lr.wroteHeader = true
	lr.ResponseWriter.WriteHeader(code)
}

func (lr *loggedResponse) Write(b []byte) (int, error) {
	// Only error bodies are worth keeping, and only a bounded amount.
	if lr.status >= 400 && lr.body.Len() < errorBodyLimit {
		lr.body.Write(b)
	}
	return lr.ResponseWriter.Write(b)
}

// Hijack lets the websocket upgrade pass through the wrapper.
func (lr *loggedResponse) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := lr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
