package drive

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"teledrive-web/internal/model"
)

// unknownSize is shown when the backend listing carries no byte count.
const unknownSize = "—"

var typeByExtension = map[string]model.FileType{
	".png":  model.TypeImage,
	".jpg":  model.TypeImage,
	".jpeg": model.TypeImage,
	".gif":  model.TypeImage,
	".webp": model.TypeImage,
	".bmp":  model.TypeImage,
	".svg":  model.TypeImage,
	".mp4":  model.TypeVideo,
	".mov":  model.TypeVideo,
	".avi":  model.TypeVideo,
	".mkv":  model.TypeVideo,
	".webm": model.TypeVideo,
	".mp3":  model.TypeAudio,
	".wav":  model.TypeAudio,
	".ogg":  model.TypeAudio,
	".flac": model.TypeAudio,
	".m4a":  model.TypeAudio,
}

// DetectType classifies a file by its name's extension. The backend
// stores no media type, so the classification is purely lexical;
// anything unrecognized is a document.
func DetectType(name string) model.FileType {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := typeByExtension[ext]; ok {
		return t
	}
	return model.TypeDocument
}

// URLBuilder renders an absolute download URL for a transport message.
type URLBuilder func(messageID int64, inline bool) string

// Project converts one backend listing into the view-model shapes.
// DateAdded is stamped "now": the listing carries no creation time.
// Only image files get an inline preview URL; everything else is
// fetched on demand through the download endpoint.
func Project(nodes []model.DriveNode, buildURL URLBuilder, now time.Time) ([]model.FolderEntry, []model.MediaFile) {
	folders := make([]model.FolderEntry, 0)
	files := make([]model.MediaFile, 0)

	for _, node := range nodes {
		switch node.Type {
		case model.NodeFolder:
			folders = append(folders, model.FolderEntry{
				ID:        node.ID,
				Name:      node.Name,
				ParentID:  node.ParentID,
				DateAdded: now,
			})
		case model.NodeFile:
			mediaType := DetectType(node.Name)

			url := ""
			if node.MessageID != nil && mediaType == model.TypeImage {
				url = buildURL(*node.MessageID, true)
			}

			files = append(files, model.MediaFile{
				ID:        strconv.FormatInt(node.ID, 10),
				Name:      node.Name,
				Type:      mediaType,
				Size:      unknownSize,
				DateAdded: now,
				Tags:      []string{},
				URL:       url,
				MessageID: node.MessageID,
				FolderID:  node.ParentID,
			})
		}
	}

	return folders, files
}

// WithVirtualRoot prepends the virtual "My Drive" crumb to a backend
// ancestor chain. The root folder itself yields just the virtual
// entry.
func WithVirtualRoot(items []model.BreadcrumbItem) []model.Crumb {
	crumbs := make([]model.Crumb, 0, len(items)+1)
	crumbs = append(crumbs, model.Crumb{ID: nil, Name: "My Drive"})
	for _, item := range items {
		id := item.ID
		crumbs = append(crumbs, model.Crumb{ID: &id, Name: item.Name})
	}
	return crumbs
}
