//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teledrive-web/internal/authflow"
	"teledrive-web/internal/backend"
	"teledrive-web/internal/config"
	"teledrive-web/internal/drive"
	"teledrive-web/internal/event"
	"teledrive-web/internal/handler"
	"teledrive-web/internal/preview"
	"teledrive-web/internal/router"
	"teledrive-web/internal/session"
	"teledrive-web/internal/tags"
	"teledrive-web/internal/websocket"
)

const (
	validCode     = "12345"
	validPassword = "hunter2"
)

type fakeFolder struct {
	id     int64
	name   string
	parent *int64
}

type fakeFile struct {
	id        int64
	name      string
	parent    *int64
	messageID int64
}

// fakeDriveBackend is an in-memory stand-in for the TeleDrive
// backend, speaking its HTTP JSON dialect.
type fakeDriveBackend struct {
	mu         sync.Mutex
	twoFactor  bool
	nextID     int64
	sessions   map[string]string // session id -> "pending" | "password" | "authorized"
	folders    map[int64]*fakeFolder
	files      map[int64]*fakeFile
	failUpload map[string]bool // file names the upload endpoint rejects
}

func newFakeDriveBackend() *fakeDriveBackend {
	return &fakeDriveBackend{
		nextID:     100,
		sessions:   map[string]string{},
		folders:    map[int64]*fakeFolder{},
		files:      map[int64]*fakeFile{},
		failUpload: map[string]bool{},
	}
}

func (f *fakeDriveBackend) addFolder(name string, parent *int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.folders[f.nextID] = &fakeFolder{id: f.nextID, name: name, parent: parent}
	return f.nextID
}

func (f *fakeDriveBackend) addFile(name string, parent *int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.files[f.nextID] = &fakeFile{id: f.nextID, name: name, parent: parent, messageID: f.nextID + 10000}
	return f.nextID
}

func (f *fakeDriveBackend) sessionState(r *http.Request) (string, string) {
	sess := r.Header.Get("X-Session-Id")
	if sess == "" {
		sess = r.URL.Query().Get("session_id")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return sess, f.sessions[sess]
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeDriveBackend) requireAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, state := f.sessionState(r)
	if state != "authorized" {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return sess, true
}

func (f *fakeDriveBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/send_code":
		f.mu.Lock()
		f.nextID++
		sess := fmt.Sprintf("sess-%d", f.nextID)
		f.sessions[sess] = "pending"
		f.mu.Unlock()
		writeJSON(w, map[string]string{"session_id": sess})

	case r.Method == http.MethodPost && r.URL.Path == "/auth/check_code":
		var body struct {
			SessionID string `json:"session_id"`
			Code      string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Code != validCode {
			writeDetail(w, http.StatusBadRequest, "The confirmation code is invalid")
			return
		}
		f.mu.Lock()
		status := "authorized"
		if f.twoFactor {
			status = "password_required"
			f.sessions[body.SessionID] = "password"
		} else {
			f.sessions[body.SessionID] = "authorized"
		}
		f.mu.Unlock()
		writeJSON(w, map[string]string{"status": status})

	case r.Method == http.MethodPost && r.URL.Path == "/auth/check_password":
		var body struct {
			SessionID string `json:"session_id"`
			Password  string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != validPassword {
			writeDetail(w, http.StatusBadRequest, "Invalid password")
			return
		}
		f.mu.Lock()
		f.sessions[body.SessionID] = "authorized"
		f.mu.Unlock()
		writeJSON(w, map[string]string{"status": "authorized"})

	case r.Method == http.MethodGet && r.URL.Path == "/me":
		_, state := f.sessionState(r)
		if state == "" {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeJSON(w, map[string]any{
			"authorized": state == "authorized",
			"username":   "alice",
			"phone":      "+15550001",
		})

	case r.Method == http.MethodPost && r.URL.Path == "/auth/logout":
		sess, _ := f.sessionState(r)
		f.mu.Lock()
		delete(f.sessions, sess)
		f.mu.Unlock()
		writeJSON(w, map[string]bool{"ok": true})

	case r.Method == http.MethodGet && r.URL.Path == "/drive":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		var parent *int64
		if raw := r.URL.Query().Get("parent_id"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			parent = &id
		}
		f.mu.Lock()
		nodes := []map[string]any{}
		for _, folder := range f.folders {
			if sameParent(folder.parent, parent) {
				nodes = append(nodes, map[string]any{
					"id": folder.id, "type": "folder", "name": folder.name, "parent_id": folder.parent,
				})
			}
		}
		for _, file := range f.files {
			if sameParent(file.parent, parent) {
				nodes = append(nodes, map[string]any{
					"id": file.id, "type": "file", "name": file.name, "parent_id": file.parent, "message_id": file.messageID,
				})
			}
		}
		f.mu.Unlock()
		writeJSON(w, map[string]any{"nodes": nodes})

	case r.Method == http.MethodPost && r.URL.Path == "/folders":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		var body struct {
			Name     string `json:"name"`
			ParentID *int64 `json:"parent_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := f.addFolder(body.Name, body.ParentID)
		writeJSON(w, map[string]any{"id": id, "name": body.Name, "parent_id": body.ParentID})

	case r.Method == http.MethodPatch && r.URL.Path == "/folders/rename":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		var body struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		if folder, ok := f.folders[body.ID]; ok {
			folder.name = body.Name
		}
		f.mu.Unlock()
		writeJSON(w, map[string]bool{"ok": true})

	case r.Method == http.MethodPatch && r.URL.Path == "/files/rename":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		var body struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		if file, ok := f.files[body.ID]; ok {
			file.name = body.Name
		}
		f.mu.Unlock()
		writeJSON(w, map[string]bool{"ok": true})

	case r.Method == http.MethodGet && r.URL.Path == "/folders/breadcrumbs":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		id, _ := strconv.ParseInt(r.URL.Query().Get("folder_id"), 10, 64)
		f.mu.Lock()
		items := []map[string]any{}
		for cursor := f.folders[id]; cursor != nil; {
			items = append([]map[string]any{{"id": cursor.id, "name": cursor.name, "parent_id": cursor.parent}}, items...)
			if cursor.parent == nil {
				break
			}
			cursor = f.folders[*cursor.parent]
		}
		f.mu.Unlock()
		writeJSON(w, map[string]any{"items": items})

	case r.Method == http.MethodPost && r.URL.Path == "/move":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		var body struct {
			FileIDs        []int64 `json:"file_ids"`
			FolderIDs      []int64 `json:"folder_ids"`
			TargetParentID *int64  `json:"target_parent_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		for _, id := range body.FolderIDs {
			if body.TargetParentID != nil && *body.TargetParentID == id {
				f.mu.Unlock()
				writeDetail(w, http.StatusBadRequest, "Cannot move a folder into itself")
				return
			}
			if folder, ok := f.folders[id]; ok {
				folder.parent = body.TargetParentID
			}
		}
		for _, id := range body.FileIDs {
			if file, ok := f.files[id]; ok {
				file.parent = body.TargetParentID
			}
		}
		f.mu.Unlock()
		writeJSON(w, map[string]bool{"ok": true})

	case r.Method == http.MethodPost && r.URL.Path == "/delete":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		var body struct {
			FileIDs   []int64 `json:"file_ids"`
			FolderIDs []int64 `json:"folder_ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		for _, id := range body.FileIDs {
			delete(f.files, id)
		}
		for _, id := range body.FolderIDs {
			delete(f.folders, id)
		}
		f.mu.Unlock()
		writeJSON(w, map[string]bool{"ok": true})

	case r.Method == http.MethodPost && r.URL.Path == "/upload":
		if _, ok := f.requireAuth(w, r); !ok {
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "missing file")
			return
		}
		defer file.Close()
		_, _ = io.Copy(io.Discard, file)

		f.mu.Lock()
		if f.failUpload[header.Filename] {
			f.mu.Unlock()
			writeDetail(w, http.StatusBadRequest, "upload rejected: "+header.Filename)
			return
		}
		f.mu.Unlock()

		var parent *int64
		if raw := r.URL.Query().Get("folder_id"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			parent = &id
		}
		id := f.addFile(header.Filename, parent)
		f.mu.Lock()
		msgID := f.files[id].messageID
		f.mu.Unlock()
		writeJSON(w, map[string]any{"message_id": msgID, "name": header.Filename})

	default:
		writeDetail(w, http.StatusNotFound, "Not found")
	}
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// testEnv is a fully wired server backed by the fake drive backend.
type testEnv struct {
	server  *httptest.Server
	backend *fakeDriveBackend
	client  *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := newFakeDriveBackend()
	backendSrv := httptest.NewServer(fake)
	t.Cleanup(backendSrv.Close)

	tagsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `["suggested","tag"]`}},
			},
		})
	}))
	t.Cleanup(tagsSrv.Close)

	cfg := &config.Config{
		ServerPort:         "3000",
		RequestTimeout:     10 * time.Second,
		BackendBaseURL:     backendSrv.URL,
		BackendTimeout:     10 * time.Second,
		MaxUploadSize:      32 << 20,
		SessionSecret:      "integration-test-secret",
		SessionTTL:         time.Hour,
		SessionCookie:      "td_session",
		CORSOrigins:        []string{"http://localhost:5173"},
		RateLimitRPM:       10000,
		AuthRateLimitRPM:   10000,
		ViewIdleTTL:        time.Hour,
		ThumbnailMaxPixels: 128,
		TagsBaseURL:        tagsSrv.URL,
		TagsAPIKey:         "test-key",
		TagsModel:          "test-model",
		TagsTimeout:        10 * time.Second,
	}

	api := backend.New(backend.Config{BaseURL: cfg.BackendBaseURL, Timeout: cfg.BackendTimeout})

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionCookie, false)
	require.NoError(t, err)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	views := drive.NewRegistry(api, cfg.ViewIdleTTL)
	t.Cleanup(views.Close)
	flows := authflow.NewStore(api, time.Hour)
	t.Cleanup(flows.Close)

	suggest := tags.New(tags.Config{BaseURL: cfg.TagsBaseURL, APIKey: cfg.TagsAPIKey, Model: cfg.TagsModel, Timeout: cfg.TagsTimeout})
	thumbnails := preview.NewGenerator(api, cfg.ThumbnailMaxPixels)

	srv := httptest.NewServer(router.New(cfg, sessions, router.Handlers{
		Auth:      handler.NewAuthHandler(flows, api, sessions, views, false),
		Drive:     handler.NewDriveHandler(views, sessions),
		Folder:    handler.NewFolderHandler(views, api, bus),
		Selection: handler.NewSelectionHandler(views, bus),
		Upload:    handler.NewUploadHandler(views, api, bus, cfg.MaxUploadSize),
		Tags:      handler.NewTagsHandler(views, suggest, bus),
		Media:     handler.NewMediaHandler(api, thumbnails),
		WS:        handler.NewWSHandler(hub),
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		server:  srv,
		backend: fake,
		client:  &http.Client{Jar: jar},
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func (e *testEnv) post(t *testing.T, path string, payload any) (*http.Response, apiEnvelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return e.do(t, req)
}

func (e *testEnv) put(t *testing.T, path string, payload any) (*http.Response, apiEnvelope) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, e.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return e.do(t, req)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, apiEnvelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)

	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, apiEnvelope) {
	t.Helper()

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope apiEnvelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	}

	return resp, envelope
}

// signIn walks the whole code (and optional password) flow, leaving
// the session cookie in the env's jar.
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()

	resp, env := e.post(t, "/api/v1/auth/send_code", map[string]string{"phone": "+15550001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	resp, env = e.post(t, "/api/v1/auth/check_code", map[string]string{"code": validCode})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var state struct {
		Stage string `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))

	if state.Stage == "password" {
		resp, env = e.post(t, "/api/v1/auth/check_password", map[string]string{"password": validPassword})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, env.Success)
		require.NoError(t, json.Unmarshal(env.Data, &state))
	}

	require.Equal(t, "authenticated", state.Stage)
}

type driveSnapshot struct {
	ParentID *int64 `json:"parent_id"`
	Folders  []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"folders"`
	Files []struct {
		ID   string   `json:"id"`
		Name string   `json:"name"`
		Type string   `json:"type"`
		Tags []string `json:"tags"`
	} `json:"files"`
	Breadcrumbs []struct {
		ID   *int64 `json:"id"`
		Name string `json:"name"`
	} `json:"breadcrumbs"`
	Selection []string `json:"selection"`
}

func decodeSnapshot(t *testing.T, env apiEnvelope) driveSnapshot {
	t.Helper()

	var snap driveSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	return snap
}

func decodeInto(t *testing.T, env apiEnvelope, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}
