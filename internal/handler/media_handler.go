package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"teledrive-web/internal/backend"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/preview"
	"teledrive-web/pkg/apierror"
)

// MediaHandler proxies file content, previews and the profile photo
// from the backend. Proxying keeps the backend session token out of
// URLs the browser can see.
type MediaHandler struct {
	api        *backend.Client
	thumbnails *preview.Generator
}

func NewMediaHandler(api *backend.Client, thumbnails *preview.Generator) *MediaHandler {
	return &MediaHandler{api: api, thumbnails: thumbnails}
}

// Download streams a file. ?inline=1 serves it for in-browser viewing
// instead of as an attachment.
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "malformed message id", "", http.StatusBadRequest))
		return
	}

	inline := r.URL.Query().Get("inline") == "1"

	body, contentType, size, err := h.api.Download(r.Context(), token, messageID, inline)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		// Headers are already out; all we can do is log the broken stream.
		slog.Debug("download stream interrupted", "message_id", messageID, "error", err)
	}
}

// Thumbnail renders a small JPEG preview of a stored image.
func (h *MediaHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "malformed message id", "", http.StatusBadRequest))
		return
	}

	thumb, err := h.thumbnails.Thumbnail(r.Context(), token, messageID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(thumb)
}

// Photo proxies the account's profile photo.
func (h *MediaHandler) Photo(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	body, contentType, err := h.api.AvatarPhoto(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")

	if _, err := io.Copy(w, body); err != nil {
		slog.Debug("photo stream interrupted", "error", err)
	}
}
