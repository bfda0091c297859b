package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"teledrive-web/internal/drive"
	"teledrive-web/internal/event"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/model"
	"teledrive-web/internal/tags"
	"teledrive-web/pkg/apierror"
)

type TagsHandler struct {
	views   *drive.Registry
	suggest *tags.Client
	bus     event.Bus
}

func NewTagsHandler(views *drive.Registry, suggest *tags.Client, bus event.Bus) *TagsHandler {
	return &TagsHandler{views: views, suggest: suggest, bus: bus}
}

// Suggest asks the AI service for tags describing a file. When the
// request names a listed file, the tags are attached to it in the
// current view. The tags live only in the view; nothing is persisted.
func (h *TagsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SuggestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if strings.TrimSpace(payload.MediaType) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "media_type is required", "", http.StatusBadRequest))
		return
	}

	suggested, err := h.suggest.SuggestTags(r.Context(), payload.MediaType, payload.MediaDataURI, payload.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	token := middleware.SessionFromContext(r.Context())
	if payload.FileID != "" {
		h.views.Get(token).AttachTags(payload.FileID, suggested)
	}

	h.bus.Publish(event.New(event.TypeTagsSuggested, token, model.TagsData{Tags: suggested}))
	writeSuccess(w, http.StatusOK, model.TagsData{Tags: suggested})
}
