package handler

import (
	"encoding/json"
	"net/http"

	"teledrive-web/internal/backend"
	"teledrive-web/internal/drive"
	"teledrive-web/internal/event"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/model"
	"teledrive-web/internal/util"
	"teledrive-web/pkg/apierror"
)

type FolderHandler struct {
	views *drive.Registry
	api   *backend.Client
	bus   event.Bus
}

func NewFolderHandler(views *drive.Registry, api *backend.Client, bus event.Bus) *FolderHandler {
	return &FolderHandler{views: views, api: api, bus: bus}
}

// Create makes a folder inside the currently open folder.
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	token := middleware.SessionFromContext(r.Context())
	view := h.views.Get(token)

	created, err := view.CreateFolder(r.Context(), payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	h.bus.Publish(event.New(event.TypeFolderCreated, token, created))
	writeSuccess(w, http.StatusCreated, view.Snapshot())
}

// Rename renames a folder. The new name is patched into the held
// listing instead of triggering a refetch.
func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	token := middleware.SessionFromContext(r.Context())
	view := h.views.Get(token)

	if err := view.RenameFolder(r.Context(), payload.ID, payload.Name); err != nil {
		writeError(w, err)
		return
	}

	h.bus.Publish(event.New(event.TypeItemRenamed, token, payload))
	writeSuccess(w, http.StatusOK, view.Snapshot())
}

// RenameFile renames a file and reloads the listing.
func (h *FolderHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	name, err := util.SanitizeFilename(payload.Name, true)
	if err != nil {
		writeError(w, err)
		return
	}
	payload.Name = name

	token := middleware.SessionFromContext(r.Context())
	view := h.views.Get(token)

	if err := view.RenameFile(r.Context(), payload.ID, payload.Name); err != nil {
		writeError(w, err)
		return
	}

	h.bus.Publish(event.New(event.TypeItemRenamed, token, payload))
	writeSuccess(w, http.StatusOK, view.Snapshot())
}

// Breadcrumbs returns the ancestor chain of a folder, virtual root
// included, without touching the cached view.
func (h *FolderHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	folderID, err := parseOptionalID(r.URL.Query().Get("folder_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.api.FetchBreadcrumbs(r.Context(), token, folderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, drive.WithVirtualRoot(items))
}
