package model

// NodeType discriminates the two entity kinds the backend stores.
type NodeType string

const (
	NodeFile   NodeType = "file"
	NodeFolder NodeType = "folder"
)

// DriveNode is a remote entity as returned by the TeleDrive backend.
// File ids and folder ids live in separate numeric namespaces.
type DriveNode struct {
	ID        int64    `json:"id"`
	Type      NodeType `json:"type"`
	Name      string   `json:"name"`
	ParentID  *int64   `json:"parent_id"`
	MessageID *int64   `json:"message_id,omitempty"`
}

// Folder is the backend's representation of a created folder.
type Folder struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// BreadcrumbItem is one ancestor in the chain from root to a folder.
// The virtual "My Drive" root is not part of the backend response; the
// view model prepends it.
type BreadcrumbItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// Crumb is a breadcrumb entry as shown to the presentation layer. A nil
// ID denotes the virtual root.
type Crumb struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

// Me is the backend's profile answer. Authorized=false means the
// session is stale or absent; the other fields are then empty.
type Me struct {
	Authorized bool   `json:"authorized"`
	Username   string `json:"username,omitempty"`
	Phone      string `json:"phone,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// CodeStatus is the outcome of a login-code check.
type CodeStatus string

const (
	CodeAuthorized       CodeStatus = "authorized"
	CodePasswordRequired CodeStatus = "password_required"
	CodeUnknown          CodeStatus = "unknown"
)

// UploadResult identifies the transport message holding uploaded bytes.
type UploadResult struct {
	MessageID int64  `json:"message_id"`
	Name      string `json:"name"`
}
