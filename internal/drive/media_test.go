package drive

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teledrive-web/internal/model"
)

func TestDetectType(t *testing.T) {
	cases := map[string]model.FileType{
		"photo.JPG":    model.TypeImage,
		"clip.webm":    model.TypeVideo,
		"track.flac":   model.TypeAudio,
		"notes.txt":    model.TypeDocument,
		"archive.zip":  model.TypeDocument,
		"noextension":  model.TypeDocument,
		"shot.png.bak": model.TypeDocument,
	}

	for name, want := range cases {
		assert.Equal(t, want, DetectType(name), name)
	}
}

func TestProject(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgID := int64(900)
	parent := int64(5)

	nodes := []model.DriveNode{
		{ID: 1, Type: model.NodeFolder, Name: "Photos", ParentID: &parent},
		{ID: 10, Type: model.NodeFile, Name: "cat.png", ParentID: &parent, MessageID: &msgID},
		{ID: 11, Type: model.NodeFile, Name: "plan.pdf", ParentID: &parent, MessageID: &msgID},
		{ID: 12, Type: model.NodeFile, Name: "orphan.png", ParentID: &parent},
	}

	buildURL := func(messageID int64, inline bool) string {
		return fmt.Sprintf("/dl/%d?inline=%t", messageID, inline)
	}

	folders, files := Project(nodes, buildURL, now)

	require.Len(t, folders, 1)
	assert.Equal(t, "Photos", folders[0].Name)
	assert.Equal(t, now, folders[0].DateAdded)

	require.Len(t, files, 3)

	t.Run("image with a transport message gets an inline preview url", func(t *testing.T) {
		assert.Equal(t, "/dl/900?inline=true", files[0].URL)
	})

	t.Run("non-image gets no preview url", func(t *testing.T) {
		assert.Empty(t, files[1].URL)
		assert.Equal(t, model.TypeDocument, files[1].Type)
	})

	t.Run("image without a transport message gets no preview url", func(t *testing.T) {
		assert.Empty(t, files[2].URL)
	})

	t.Run("tags start empty, not nil", func(t *testing.T) {
		for _, f := range files {
			assert.NotNil(t, f.Tags)
			assert.Empty(t, f.Tags)
		}
	})

	t.Run("file ids are decimal strings", func(t *testing.T) {
		assert.Equal(t, "10", files[0].ID)
	})
}

func TestWithVirtualRoot(t *testing.T) {
	t.Run("root yields just the virtual crumb", func(t *testing.T) {
		crumbs := WithVirtualRoot(nil)

		require.Len(t, crumbs, 1)
		assert.Nil(t, crumbs[0].ID)
		assert.Equal(t, "My Drive", crumbs[0].Name)
	})

	t.Run("ancestors follow the virtual crumb in order", func(t *testing.T) {
		crumbs := WithVirtualRoot([]model.BreadcrumbItem{
			{ID: 1, Name: "Docs"},
			{ID: 2, Name: "Taxes"},
		})

		require.Len(t, crumbs, 3)
		assert.Equal(t, "Docs", crumbs[1].Name)
		require.NotNil(t, crumbs[2].ID)
		assert.Equal(t, int64(2), *crumbs[2].ID)
	})
}
