package model

import "time"

// FileType is the coarse classification derived from a filename
// extension. It drives the sidebar filter, not storage.
type FileType string

const (
	TypeImage    FileType = "image"
	TypeVideo    FileType = "video"
	TypeAudio    FileType = "audio"
	TypeDocument FileType = "document"
)

// MediaFile is the view-model projection of a file node. Size and
// DateAdded are synthetic: the backend does not report byte counts for
// listings, and DateAdded is stamped at fetch time. Tags are ephemeral
// client-side state and never persisted.
type MediaFile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	Size      string    `json:"size"`
	DateAdded time.Time `json:"date_added"`
	Tags      []string  `json:"tags"`
	URL       string    `json:"url"`
	MessageID *int64    `json:"message_id,omitempty"`
	FolderID  *int64    `json:"folder_id"`
}

// FolderEntry is the view-model projection of a folder node.
type FolderEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id"`
	DateAdded time.Time `json:"date_added"`
}
