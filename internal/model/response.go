package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DriveListData is the projected listing for one folder: folders first,
// then the filtered and sorted files, plus the breadcrumb path and the
// current selection so the presentation layer can re-render from a
// single response.
type DriveListData struct {
	ParentID    *int64        `json:"parent_id"`
	Folders     []FolderEntry `json:"folders"`
	Files       []MediaFile   `json:"files"`
	Breadcrumbs []Crumb       `json:"breadcrumbs"`
	Selection   []string      `json:"selection"`
}

// SelectionData reports the selection set after a mutation.
type SelectionData struct {
	Selection []string `json:"selection"`
}

// UploadItem is one successfully uploaded file as assembled
// client-side at upload-acknowledgement time.
type UploadItem struct {
	File MediaFile `json:"file"`
}

type UploadFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UploadBatchData reports a sequential upload batch. The batch is
// fail-fast: at most one failure entry, and files queued after it are
// not attempted.
type UploadBatchData struct {
	Uploaded []UploadItem    `json:"uploaded"`
	Failed   []UploadFailure `json:"failed"`
}

type TagsData struct {
	Tags []string `json:"tags"`
}
