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

func TestSelectionToggleAndClear(t *testing.T) {
	env := newTestEnv(t)
	folderID := env.backend.addFolder("Photos", nil)
	fileID := env.backend.addFile("cat.png", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	resp, body := env.post(t, "/api/v1/selection/toggle", map[string]string{"key": fmt.Sprintf("%d", fileID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sel struct {
		Selection []string `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &sel))
	assert.Equal(t, []string{fmt.Sprintf("%d", fileID)}, sel.Selection)

	resp, body = env.post(t, "/api/v1/selection/toggle", map[string]string{"key": fmt.Sprintf("f_%d", folderID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &sel))
	assert.Len(t, sel.Selection, 2)

	resp, body = env.post(t, "/api/v1/selection/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &sel))
	assert.Empty(t, sel.Selection)
}

func TestSelectionMovePartitionsKinds(t *testing.T) {
	env := newTestEnv(t)
	target := env.backend.addFolder("Archive", nil)
	folderID := env.backend.addFolder("Photos", nil)
	fileID := env.backend.addFile("cat.png", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	for _, key := range []string{fmt.Sprintf("%d", fileID), fmt.Sprintf("f_%d", folderID)} {
		resp, _ := env.post(t, "/api/v1/selection/toggle", map[string]string{"key": key})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.post(t, "/api/v1/selection/move", map[string]any{"target_parent_id": target})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Both items left the root and the selection is gone.
	snap := decodeSnapshot(t, body)
	require.Len(t, snap.Folders, 1)
	assert.Equal(t, "Archive", snap.Folders[0].Name)
	assert.Empty(t, snap.Files)
	assert.Empty(t, snap.Selection)

	resp, body = env.get(t, fmt.Sprintf("/api/v1/drive?parent_id=%d", target))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decodeSnapshot(t, body)
	assert.Len(t, snap.Folders, 1)
	assert.Len(t, snap.Files, 1)
}

func TestDragUnselectedItemMovesOnlyThatItem(t *testing.T) {
	env := newTestEnv(t)
	target := env.backend.addFolder("Archive", nil)
	selectedID := env.backend.addFile("selected.txt", nil)
	draggedID := env.backend.addFile("dragged.txt", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	resp, _ := env.post(t, "/api/v1/selection/toggle", map[string]string{"key": fmt.Sprintf("%d", selectedID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Dragging the unselected file yields a payload of just that file.
	resp, body := env.post(t, "/api/v1/selection/drag", map[string]string{"key": fmt.Sprintf("%d", draggedID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var drag struct {
		MIME    string   `json:"mime"`
		Payload []string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &drag))
	assert.Equal(t, "application/td-items", drag.MIME)
	require.Equal(t, []string{fmt.Sprintf("%d", draggedID)}, drag.Payload)

	resp, body = env.post(t, "/api/v1/selection/move", map[string]any{
		"keys":             drag.Payload,
		"target_parent_id": target,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The selected file stays in the root; only the dragged one moved.
	snap := decodeSnapshot(t, body)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "selected.txt", snap.Files[0].Name)
}

func TestDragSelectedItemCarriesSelection(t *testing.T) {
	env := newTestEnv(t)
	aID := env.backend.addFile("a.txt", nil)
	bID := env.backend.addFile("b.txt", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	for _, id := range []int64{aID, bID} {
		resp, _ := env.post(t, "/api/v1/selection/toggle", map[string]string{"key": fmt.Sprintf("%d", id)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.post(t, "/api/v1/selection/drag", map[string]string{"key": fmt.Sprintf("%d", aID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var drag struct {
		Payload []string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &drag))
	assert.Len(t, drag.Payload, 2)
}

func TestDeleteSelection(t *testing.T) {
	env := newTestEnv(t)
	folderID := env.backend.addFolder("Old", nil)
	fileID := env.backend.addFile("junk.txt", nil)
	env.backend.addFile("keep.txt", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	for _, key := range []string{fmt.Sprintf("f_%d", folderID), fmt.Sprintf("%d", fileID)} {
		resp, _ := env.post(t, "/api/v1/selection/toggle", map[string]string{"key": key})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.post(t, "/api/v1/selection/delete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, body)
	assert.Empty(t, snap.Folders)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "keep.txt", snap.Files[0].Name)
}

func TestDeleteWithEmptySelectionIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.backend.addFile("keep.txt", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	resp, body := env.post(t, "/api/v1/selection/delete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap := decodeSnapshot(t, body)
	assert.Len(t, snap.Files, 1)
}

func TestMoveFolderIntoItselfRejected(t *testing.T) {
	env := newTestEnv(t)
	folderID := env.backend.addFolder("Loop", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive")

	resp, _ := env.post(t, "/api/v1/selection/toggle", map[string]string{"key": fmt.Sprintf("f_%d", folderID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.post(t, "/api/v1/selection/move", map[string]any{"target_parent_id": folderID})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Message, "into itself")
}

func TestSelectAllHonorsFilter(t *testing.T) {
	env := newTestEnv(t)
	folderID := env.backend.addFolder("Photos", nil)
	imgID := env.backend.addFile("cat.png", nil)
	env.backend.addFile("notes.txt", nil)
	env.signIn(t)

	_, _ = env.get(t, "/api/v1/drive?filter=image")

	resp, body := env.post(t, "/api/v1/selection/all", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sel struct {
		Selection []string `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &sel))
	assert.ElementsMatch(t, []string{fmt.Sprintf("f_%d", folderID), fmt.Sprintf("%d", imgID)}, sel.Selection)
}
