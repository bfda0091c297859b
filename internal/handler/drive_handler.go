package handler

import (
	"errors"
	"net/http"
	"strconv"

	"teledrive-web/internal/drive"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/model"
	"teledrive-web/internal/session"
	"teledrive-web/pkg/apierror"
)

type DriveHandler struct {
	views    *drive.Registry
	sessions *session.Manager
}

func NewDriveHandler(views *drive.Registry, sessions *session.Manager) *DriveHandler {
	return &DriveHandler{views: views, sessions: sessions}
}

// List loads a folder and returns the full drive snapshot: folders,
// filtered files, breadcrumbs and the selection. Optional query
// params adjust the view before loading:
//
//	parent_id  folder to open (absent = root)
//	filter     type filter (all, image, video, audio, document)
//	search     case-insensitive name substring
func (h *DriveHandler) List(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())
	view := h.views.Get(token)

	if err := view.SetFilter(r.URL.Query().Get("filter")); err != nil {
		writeError(w, err)
		return
	}
	view.SetSearch(r.URL.Query().Get("search"))

	parentID, err := parseOptionalID(r.URL.Query().Get("parent_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := view.LoadFolder(r.Context(), parentID); err != nil {
		// A newer navigation superseded this one; the snapshot below
		// already reflects it.
		if !errors.Is(err, model.ErrStaleLoad) {
			if errors.Is(err, model.ErrUnauthenticated) {
				h.sessions.Clear(w)
			}
			writeError(w, err)
			return
		}
	}

	writeSuccess(w, http.StatusOK, view.Snapshot())
}

// Refresh re-fetches the current folder without changing filters.
func (h *DriveHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())
	view := h.views.Get(token)

	if err := view.Reload(r.Context()); err != nil && !errors.Is(err, model.ErrStaleLoad) {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view.Snapshot())
}

// parseOptionalID parses a numeric id query param, nil when absent.
func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apierror.New("BAD_REQUEST", "malformed id "+strconv.Quote(raw), "", http.StatusBadRequest)
	}
	return &id, nil
}
