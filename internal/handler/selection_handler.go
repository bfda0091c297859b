package handler

import (
	"encoding/json"
	"net/http"

	"teledrive-web/internal/drive"
	"teledrive-web/internal/event"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/model"
	"teledrive-web/pkg/apierror"
)

// SelectionHandler exposes the selection set and the bulk operations
// that act on it: move (including drag-and-drop) and delete.
type SelectionHandler struct {
	views *drive.Registry
	bus   event.Bus
}

func NewSelectionHandler(views *drive.Registry, bus event.Bus) *SelectionHandler {
	return &SelectionHandler{views: views, bus: bus}
}

// Toggle flips one item in or out of the selection.
func (h *SelectionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ToggleSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	view := h.view(r)
	if err := view.ToggleSelect(payload.Key); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SelectionData{Selection: view.SelectionKeys()})
}

// All selects every folder plus every file visible under the active
// filter and search.
func (h *SelectionHandler) All(w http.ResponseWriter, r *http.Request) {
	view := h.view(r)
	view.SelectAll()
	writeSuccess(w, http.StatusOK, model.SelectionData{Selection: view.SelectionKeys()})
}

// Clear empties the selection.
func (h *SelectionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view := h.view(r)
	view.ClearSelection()
	writeSuccess(w, http.StatusOK, model.SelectionData{Selection: view.SelectionKeys()})
}

// Drag returns the transfer payload for a drag gesture starting on
// the given item.
func (h *SelectionHandler) Drag(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ToggleSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	view := h.view(r)
	transfer, err := view.BeginDrag(payload.Key)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"mime":    drive.TransferMIME,
		"payload": json.RawMessage(transfer),
	})
}

// Move relocates items under a new parent. With explicit keys it
// completes a drag-and-drop; without them it moves the current
// selection.
func (h *SelectionHandler) Move(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.MoveSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	token := middleware.SessionFromContext(r.Context())
	view := h.view(r)

	var err error
	if len(payload.Keys) > 0 {
		transfer, encErr := json.Marshal(payload.Keys)
		if encErr != nil {
			writeError(w, encErr)
			return
		}
		err = view.Drop(r.Context(), transfer, payload.TargetParentID)
	} else {
		err = view.MoveSelection(r.Context(), payload.TargetParentID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.bus.Publish(event.New(event.TypeItemsMoved, token, payload))
	writeSuccess(w, http.StatusOK, view.Snapshot())
}

// Delete removes the current selection (or the explicitly named keys)
// and refreshes the listing.
func (h *SelectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.DeleteSelectionRequest
	if r.Body != nil {
		// The body is optional; absent keys mean "delete the selection".
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	token := middleware.SessionFromContext(r.Context())
	view := h.view(r)

	// Explicit keys replace the selection before deleting.
	if len(payload.Keys) > 0 {
		view.ClearSelection()
		for _, key := range payload.Keys {
			if err := view.ToggleSelect(key); err != nil {
				writeError(w, err)
				return
			}
		}
	}

	if err := view.DeleteSelection(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	h.bus.Publish(event.New(event.TypeItemsDeleted, token, payload))
	writeSuccess(w, http.StatusOK, view.Snapshot())
}

func (h *SelectionHandler) view(r *http.Request) *drive.View {
	return h.views.Get(middleware.SessionFromContext(r.Context()))
}
