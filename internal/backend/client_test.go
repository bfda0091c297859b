package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"teledrive-web/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(Config{BaseURL: srv.URL}), srv
}

func TestSendCode(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/send_code", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "+15551234567", body["phone"])

		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": "S1"})
	})

	session, err := client.SendCode(context.Background(), "+15551234567")
	require.NoError(t, err)
	require.Equal(t, "S1", session)
}

func TestCheckCode_Statuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		backendStatus string
		want          model.CodeStatus
	}{
		{"authorized", model.CodeAuthorized},
		{"password_required", model.CodePasswordRequired},
		{"something_else", model.CodeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.backendStatus, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "S1", r.Header.Get("X-Session-Id"))
				_ = json.NewEncoder(w).Encode(map[string]string{"status": tc.backendStatus})
			})

			status, err := client.CheckCode(context.Background(), "S1", "000000")
			require.NoError(t, err)
			require.Equal(t, tc.want, status)
		})
	}
}

func TestDecodeError_DetailSurfacesVerbatim(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "cannot move a folder into itself"})
	})

	err := client.MoveItems(context.Background(), "S1", nil, []int64{3}, ptr(int64(3)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot move a folder into itself")
}

func TestDecodeError_MissingDetailIsGeneric(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.RenameFile(context.Background(), "S1", 7, "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Request failed")
}

func TestDecodeError_UnauthorizedMapsToSentinel(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "session expired"})
	})

	_, err := client.FetchDrive(context.Background(), "stale", nil)
	require.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestFetchDrive_ParentParam(t *testing.T) {
	t.Parallel()

	t.Run("root omits parent_id", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Empty(t, r.URL.Query().Get("parent_id"))
			_ = json.NewEncoder(w).Encode(map[string]any{"nodes": []model.DriveNode{}})
		})

		nodes, err := client.FetchDrive(context.Background(), "S1", nil)
		require.NoError(t, err)
		require.Empty(t, nodes)
	})

	t.Run("folder id is forwarded", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "42", r.URL.Query().Get("parent_id"))
			_ = json.NewEncoder(w).Encode(map[string]any{"nodes": []model.DriveNode{
				{ID: 1, Type: model.NodeFile, Name: "a.png"},
			}})
		})

		nodes, err := client.FetchDrive(context.Background(), "S1", ptr(int64(42)))
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Equal(t, "a.png", nodes[0].Name)
	})
}

func TestMoveItems_EmptyListsSkipNetwork(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued for an empty move")
	})

	require.NoError(t, client.MoveItems(context.Background(), "S1", nil, nil, nil))
}

func TestBulkDelete_EmptyListsSkipNetwork(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued for an empty delete")
	})

	require.NoError(t, client.BulkDelete(context.Background(), "S1", nil, nil))
}

func TestBulkDelete_PartitionedIDsForwarded(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/delete", r.URL.Path)

		var body struct {
			FileIDs   []int64 `json:"file_ids"`
			FolderIDs []int64 `json:"folder_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []int64{3}, body.FileIDs)
		require.Equal(t, []int64{3}, body.FolderIDs)

		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.BulkDelete(context.Background(), "S1", []int64{3}, []int64{3}))
}

func TestBuildDownloadURL(t *testing.T) {
	t.Parallel()

	client := New(Config{BaseURL: "http://api.example"})

	require.Equal(t,
		"http://api.example/download/9?disposition=inline&session_id=S%2F1",
		client.BuildDownloadURL("S/1", 9, true))
	require.Equal(t,
		"http://api.example/download/9?disposition=attachment",
		client.BuildDownloadURL("", 9, false))
}

func TestFetchBreadcrumbs_RootIsLocal(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("root breadcrumbs must not hit the backend")
	})

	items, err := client.FetchBreadcrumbs(context.Background(), "S1", nil)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestUploadFile(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		require.Equal(t, "S1", r.URL.Query().Get("session_id"))
		require.Equal(t, "7", r.URL.Query().Get("folder_id"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "photo.png", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "pngbytes", string(content))

		_ = json.NewEncoder(w).Encode(model.UploadResult{MessageID: 555, Name: "photo.png"})
	})

	var lastPct int
	result, err := client.UploadFile(context.Background(), "S1", "photo.png", ptr(int64(7)),
		strings.NewReader("pngbytes"), int64(len("pngbytes")), func(pct int) { lastPct = pct })
	require.NoError(t, err)
	require.Equal(t, int64(555), result.MessageID)
	require.Equal(t, "photo.png", result.Name)
	require.Equal(t, 100, lastPct)
}

func TestUploadFile_BackendErrorSurfaced(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "file too large"})
	})

	_, err := client.UploadFile(context.Background(), "S1", "big.bin", nil,
		strings.NewReader("zz"), 2, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "file too large")
}

func ptr[T any](v T) *T {
	return &v
}
