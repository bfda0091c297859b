package model

type SendCodeRequest struct {
	Phone string `json:"phone"`
}

type CheckCodeRequest struct {
	Code string `json:"code"`
}

type CheckPasswordRequest struct {
	Password string `json:"password"`
}

type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

type RenameRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ToggleSelectRequest carries one prefixed selection key
// ("f_<id>" for folders, "<id>" for files).
type ToggleSelectRequest struct {
	Key string `json:"key"`
}

// MoveSelectionRequest moves the current selection (or an explicit
// drag payload) under a new parent. A nil target means root.
type MoveSelectionRequest struct {
	Keys           []string `json:"keys,omitempty"`
	TargetParentID *int64   `json:"target_parent_id"`
}

type DeleteSelectionRequest struct {
	Keys []string `json:"keys,omitempty"`
}

// SuggestTagsRequest asks for AI tag suggestions. FileID is optional;
// when set, the suggested tags are also attached to that file in the
// current listing.
type SuggestTagsRequest struct {
	FileID       string `json:"file_id,omitempty"`
	MediaType    string `json:"media_type"`
	MediaDataURI string `json:"media_data_uri,omitempty"`
	Description  string `json:"description,omitempty"`
}

type SetFilterRequest struct {
	Filter string `json:"filter,omitempty"`
	Search string `json:"search,omitempty"`
}
