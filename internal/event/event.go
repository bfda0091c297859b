package event

type Type string

const (
	TypeDriveChanged   Type = "drive.changed"
	TypeFolderCreated  Type = "folder.created"
	TypeItemRenamed    Type = "item.renamed"
	TypeItemsMoved     Type = "items.moved"
	TypeItemsDeleted   Type = "items.deleted"
	TypeFileUploaded   Type = "file.uploaded"
	TypeUploadProgress Type = "upload.progress"
	TypeTagsSuggested  Type = "tags.suggested"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	// Session scopes delivery: drive activity is private, so an event
	// is only pushed to connections of the session that caused it.
	Session string `json:"-"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
