package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"teledrive-web/internal/model"
)

// ProgressFunc receives upload progress as a 0-100 percentage. It is
// only called when the total size is known, and always ends with 100
// on success.
type ProgressFunc func(pct int)

// UploadFile streams one file to the backend as multipart form data.
// The session travels both as a query parameter and as a header, the
// way the download URLs do. Size may be <= 0 when unknown; progress
// reporting is then skipped. Size limits are enforced by the backend.
func (c *Client) UploadFile(ctx context.Context, session string, name string, folderID *int64, content io.Reader, size int64, onProgress ProgressFunc) (model.UploadResult, error) {
	q := url.Values{}
	q.Set("session_id", session)
	if folderID != nil {
		q.Set("folder_id", strconv.FormatInt(*folderID, 10))
	}

	if size > 0 && onProgress != nil {
		content = &progressReader{r: content, total: size, onProgress: onProgress}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload?"+q.Encode(), pr)
	if err != nil {
		return model.UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(sessionHeader, session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return model.UploadResult{}, decodeError(resp)
	}

	var result model.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}

	if onProgress != nil {
		onProgress(100)
	}

	return result, nil
}

type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	lastPct    int
	onProgress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.lastPct {
			p.lastPct = pct
			p.onProgress(pct)
		}
	}
	return n, err
}
