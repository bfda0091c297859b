//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveListing(t *testing.T) {
	env := newTestEnv(t)
	folderID := env.backend.addFolder("Photos", nil)
	env.backend.addFile("cat.png", nil)
	env.backend.addFile("report.pdf", nil)
	env.backend.addFile("inside.txt", &folderID)

	env.signIn(t)

	resp, body := env.get(t, "/api/v1/drive")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, body)
	assert.Nil(t, snap.ParentID)
	assert.Len(t, snap.Folders, 1)
	assert.Len(t, snap.Files, 2)
	require.Len(t, snap.Breadcrumbs, 1)
	assert.Equal(t, "My Drive", snap.Breadcrumbs[0].Name)

	// Entering the folder shows its children and extends the crumbs.
	resp, body = env.get(t, fmt.Sprintf("/api/v1/drive?parent_id=%d", folderID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap = decodeSnapshot(t, body)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "inside.txt", snap.Files[0].Name)
	require.Len(t, snap.Breadcrumbs, 2)
	assert.Equal(t, "Photos", snap.Breadcrumbs[1].Name)
}

func TestDriveFilterAndSearch(t *testing.T) {
	env := newTestEnv(t)
	env.backend.addFile("vacation.png", nil)
	env.backend.addFile("vacation.mp4", nil)
	env.backend.addFile("notes.txt", nil)

	env.signIn(t)

	resp, body := env.get(t, "/api/v1/drive?filter=image")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeSnapshot(t, body)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "vacation.png", snap.Files[0].Name)

	resp, body = env.get(t, "/api/v1/drive?search=VACATION")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decodeSnapshot(t, body)
	assert.Len(t, snap.Files, 2)

	resp, body = env.get(t, "/api/v1/drive?filter=unknown-kind")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
}

func TestCreateAndRenameFolder(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	resp, body := env.post(t, "/api/v1/folders", map[string]any{"name": "Documents"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	snap := decodeSnapshot(t, body)
	require.Len(t, snap.Folders, 1)
	assert.Equal(t, "Documents", snap.Folders[0].Name)

	resp, body = env.put(t, "/api/v1/folders/rename", map[string]any{
		"id":   snap.Folders[0].ID,
		"name": "Paperwork",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap = decodeSnapshot(t, body)
	require.Len(t, snap.Folders, 1)
	assert.Equal(t, "Paperwork", snap.Folders[0].Name)

	resp, body = env.post(t, "/api/v1/folders", map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
}

func TestRenameFile(t *testing.T) {
	env := newTestEnv(t)
	fileID := env.backend.addFile("draft.txt", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	resp, body := env.put(t, "/api/v1/files/rename", map[string]any{
		"id":   fileID,
		"name": "final.txt",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, body)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "final.txt", snap.Files[0].Name)
}

func TestBreadcrumbsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	top := env.backend.addFolder("Docs", nil)
	nested := env.backend.addFolder("Taxes", &top)
	env.signIn(t)

	resp, body := env.get(t, fmt.Sprintf("/api/v1/folders/breadcrumbs?folder_id=%d", nested))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var crumbs []struct {
		ID   *int64 `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &crumbs))
	require.Len(t, crumbs, 3)
	assert.Equal(t, "My Drive", crumbs[0].Name)
	assert.Equal(t, "Docs", crumbs[1].Name)
	assert.Equal(t, "Taxes", crumbs[2].Name)
}
