package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"teledrive-web/internal/model"
)

// FetchDrive lists the direct children of a folder. A nil parent
// means the drive root.
func (c *Client) FetchDrive(ctx context.Context, session string, parentID *int64) ([]model.DriveNode, error) {
	path := "/drive"
	if parentID != nil {
		path += "?parent_id=" + strconv.FormatInt(*parentID, 10)
	}

	var out struct {
		Nodes []model.DriveNode `json:"nodes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, session, nil, &out); err != nil {
		return nil, err
	}
	return out.Nodes, nil
}

// CreateFolder creates a folder under the given parent (nil = root).
// Name-conflict policy is the backend's business.
func (c *Client) CreateFolder(ctx context.Context, session string, name string, parentID *int64) (model.Folder, error) {
	var out model.Folder
	body := map[string]any{"name": name, "parent_id": parentID}
	if err := c.doJSON(ctx, http.MethodPost, "/folders", session, body, &out); err != nil {
		return model.Folder{}, err
	}
	return out, nil
}

// RenameFolder renames one folder.
func (c *Client) RenameFolder(ctx context.Context, session string, id int64, name string) error {
	body := map[string]any{"id": id, "name": name}
	return c.doJSON(ctx, http.MethodPatch, "/folders/rename", session, body, nil)
}

// RenameFile renames one file.
func (c *Client) RenameFile(ctx context.Context, session string, id int64, name string) error {
	body := map[string]any{"id": id, "name": name}
	return c.doJSON(ctx, http.MethodPatch, "/files/rename", session, body, nil)
}

// FetchBreadcrumbs returns the ancestor chain for a folder, ordered
// from the topmost real folder down to the folder itself. For the
// root (nil) the chain is empty.
func (c *Client) FetchBreadcrumbs(ctx context.Context, session string, folderID *int64) ([]model.BreadcrumbItem, error) {
	if folderID == nil {
		return nil, nil
	}

	path := "/folders/breadcrumbs?folder_id=" + strconv.FormatInt(*folderID, 10)

	var out struct {
		Items []model.BreadcrumbItem `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, session, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// MoveItems re-parents the given files and folders under target (nil =
// root). With both id lists empty no request is issued. A move that
// would create a cycle is rejected by the backend and surfaces as an
// ordinary domain error.
func (c *Client) MoveItems(ctx context.Context, session string, fileIDs []int64, folderIDs []int64, targetParentID *int64) error {
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return nil
	}

	body := map[string]any{
		"file_ids":         emptyIfNil(fileIDs),
		"folder_ids":       emptyIfNil(folderIDs),
		"target_parent_id": targetParentID,
	}
	return c.doJSON(ctx, http.MethodPost, "/move", session, body, nil)
}

// BulkDelete removes the given files and folders. With both id lists
// empty no request is issued.
func (c *Client) BulkDelete(ctx context.Context, session string, fileIDs []int64, folderIDs []int64) error {
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return nil
	}

	body := map[string]any{
		"file_ids":   emptyIfNil(fileIDs),
		"folder_ids": emptyIfNil(folderIDs),
	}
	return c.doJSON(ctx, http.MethodPost, "/delete", session, body, nil)
}

// BuildDownloadURL constructs the absolute URL for a file's bytes.
// The session rides along as a query parameter because the browser
// fetches these URLs directly, outside the cookie domain of this app.
func (c *Client) BuildDownloadURL(session string, messageID int64, inline bool) string {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}

	base := fmt.Sprintf("%s/download/%d?disposition=%s", c.baseURL, messageID, disposition)
	if session == "" {
		return base
	}
	return base + "&session_id=" + url.QueryEscape(session)
}

// Download streams a file's bytes. The caller owns the returned body.
func (c *Client) Download(ctx context.Context, session string, messageID int64, inline bool) (io.ReadCloser, string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildDownloadURL(session, messageID, inline), nil)
	if err != nil {
		return nil, "", 0, err
	}
	req.Header.Set(sessionHeader, session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", 0, decodeError(resp)
	}

	return resp.Body, resp.Header.Get("Content-Type"), resp.ContentLength, nil
}

func emptyIfNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
