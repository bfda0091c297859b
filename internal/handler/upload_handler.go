package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"teledrive-web/internal/backend"
	"teledrive-web/internal/drive"
	"teledrive-web/internal/event"
	"teledrive-web/internal/middleware"
	"teledrive-web/internal/model"
	"teledrive-web/internal/util"
	"teledrive-web/pkg/apierror"
)

type UploadHandler struct {
	views         *drive.Registry
	api           *backend.Client
	bus           event.Bus
	maxUploadSize int64
}

func NewUploadHandler(views *drive.Registry, api *backend.Client, bus event.Bus, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{views: views, api: api, bus: bus, maxUploadSize: maxUploadSize}
}

type progressPayload struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// Upload stores the posted files in the folder given by the folder_id
// query param (absent = root). Files upload one at a time in form
// order; the batch stops at the first failure and reports what got
// through. Progress is pushed over the event bus per file.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionFromContext(r.Context())

	folderID, err := parseOptionalID(r.URL.Query().Get("folder_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "expected a multipart upload", "", http.StatusBadRequest))
		return
	}

	view := h.views.Get(token)
	result := model.UploadBatchData{
		Uploaded: []model.UploadItem{},
		Failed:   []model.UploadFailure{},
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, apierror.New("BAD_REQUEST", "malformed multipart body", "", http.StatusBadRequest))
			return
		}

		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		item, err := h.uploadOne(r, token, folderID, part)
		_ = part.Close()
		if err != nil {
			result.Failed = append(result.Failed, model.UploadFailure{
				Name:   name,
				Reason: err.Error(),
			})
			break
		}

		result.Uploaded = append(result.Uploaded, item)
		h.bus.Publish(event.New(event.TypeFileUploaded, token, item))

		// Refresh after every stored file so a failure mid-batch still
		// leaves the listing showing what landed.
		if err := view.Reload(r.Context()); err != nil && !errors.Is(err, model.ErrStaleLoad) {
			writeError(w, err)
			return
		}
	}

	status := http.StatusOK
	if len(result.Failed) > 0 && len(result.Uploaded) == 0 {
		status = http.StatusBadGateway
	}

	writeSuccess(w, status, result)
}

func (h *UploadHandler) uploadOne(r *http.Request, token string, folderID *int64, part *multipart.Part) (model.UploadItem, error) {
	name, err := util.SanitizeFilename(part.FileName(), true)
	if err != nil {
		return model.UploadItem{}, err
	}

	onProgress := func(pct int) {
		h.bus.Publish(event.New(event.TypeUploadProgress, token, progressPayload{Name: name, Percent: pct}))
	}

	// Size is unknown while streaming a part; the backend accepts a
	// chunked body.
	uploaded, err := h.api.UploadFile(r.Context(), token, name, folderID, part, -1, onProgress)
	if err != nil {
		return model.UploadItem{}, err
	}

	messageID := uploaded.MessageID
	file := model.MediaFile{
		ID:        "",
		Name:      uploaded.Name,
		Type:      drive.DetectType(uploaded.Name),
		Tags:      []string{},
		MessageID: &messageID,
		FolderID:  folderID,
	}

	return model.UploadItem{File: file}, nil
}
