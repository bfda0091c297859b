package drive

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"teledrive-web/internal/model"
)

// Backend is the slice of the TeleDrive client the view model needs.
type Backend interface {
	FetchDrive(ctx context.Context, session string, parentID *int64) ([]model.DriveNode, error)
	FetchBreadcrumbs(ctx context.Context, session string, folderID *int64) ([]model.BreadcrumbItem, error)
	CreateFolder(ctx context.Context, session string, name string, parentID *int64) (model.Folder, error)
	RenameFolder(ctx context.Context, session string, id int64, name string) error
	RenameFile(ctx context.Context, session string, id int64, name string) error
	MoveItems(ctx context.Context, session string, fileIDs []int64, folderIDs []int64, targetParentID *int64) error
	BulkDelete(ctx context.Context, session string, fileIDs []int64, folderIDs []int64) error
	BuildDownloadURL(session string, messageID int64, inline bool) string
}

// View is the in-memory model of one session's current folder: the
// last full listing, the selection set, and the filter/search state.
// All state changes flow through its methods; after every successful
// mutation the listing is replaced by a fresh fetch, never patched,
// with two deliberate exceptions: folder rename and AI tags (see
// RenameFolder and AttachTags).
type View struct {
	api     Backend
	session string

	mu            sync.Mutex
	currentFolder *int64
	folders       []model.FolderEntry
	files         []model.MediaFile
	crumbs        []model.Crumb
	selection     *Selection
	searchTerm    string
	filterType    string

	// loadSeq tags every folder load; a completed load is discarded
	// unless it is still the newest one issued, so an out-of-order
	// response can never overwrite a later navigation.
	loadSeq uint64
}

func NewView(api Backend, session string) *View {
	return &View{
		api:        api,
		session:    session,
		selection:  NewSelection(),
		filterType: FilterAll,
		crumbs:     WithVirtualRoot(nil),
	}
}

// LoadFolder fetches the listing and breadcrumb path for a folder
// (nil = root), replaces all local state and clears the selection.
// If a newer load was issued while this one was in flight, the
// response is discarded and ErrStaleLoad returned.
func (v *View) LoadFolder(ctx context.Context, folderID *int64) error {
	v.mu.Lock()
	v.loadSeq++
	seq := v.loadSeq
	v.currentFolder = cloneID(folderID)
	v.mu.Unlock()

	nodes, err := v.api.FetchDrive(ctx, v.session, folderID)
	if err != nil {
		return err
	}

	items, err := v.api.FetchBreadcrumbs(ctx, v.session, folderID)
	if err != nil {
		return err
	}

	buildURL := func(messageID int64, inline bool) string {
		return v.api.BuildDownloadURL(v.session, messageID, inline)
	}
	folders, files := Project(nodes, buildURL, time.Now().UTC())

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.loadSeq {
		return model.ErrStaleLoad
	}

	v.folders = folders
	v.files = files
	v.crumbs = WithVirtualRoot(items)
	v.selection = NewSelection()
	return nil
}

// Reload re-fetches the current folder.
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	current := cloneID(v.currentFolder)
	v.mu.Unlock()

	return v.LoadFolder(ctx, current)
}

// Snapshot projects the current state for the presentation layer:
// folders first, files filtered and sorted, breadcrumbs and the
// selection in insertion order.
func (v *View) Snapshot() model.DriveListData {
	v.mu.Lock()
	defer v.mu.Unlock()

	folders := make([]model.FolderEntry, len(v.folders))
	copy(folders, v.folders)

	crumbs := make([]model.Crumb, len(v.crumbs))
	copy(crumbs, v.crumbs)

	return model.DriveListData{
		ParentID:    cloneID(v.currentFolder),
		Folders:     folders,
		Files:       ApplyFilter(v.files, v.filterType, v.searchTerm),
		Breadcrumbs: crumbs,
		Selection:   v.selection.Keys(),
	}
}

// CurrentFolder returns the folder the view points at (nil = root).
func (v *View) CurrentFolder() *int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneID(v.currentFolder)
}

// SetSearch updates the search term. A pure view-state change; no
// fetch is needed since filtering is a local projection.
func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searchTerm = term
}

// SetFilter updates the type filter.
func (v *View) SetFilter(filter string) error {
	if filter == "" {
		filter = FilterAll
	}
	if !ValidFilter(filter) {
		return fmt.Errorf("%w: unknown filter %q", model.ErrInvalidInput, filter)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.filterType = filter
	return nil
}

// ToggleSelect flips membership of one key. Adding is restricted to
// nodes present in the current listing; a stale key is inert.
func (v *View) ToggleSelect(key string) error {
	ref, err := ParseKey(key)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.selection.Has(ref) {
		v.selection.Remove(ref)
		return nil
	}
	if v.listedLocked(ref) {
		v.selection.Add(ref)
	}
	return nil
}

// SelectAll selects every visible node: all folders plus the files
// that survive the active filter and search.
func (v *View) SelectAll() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.selection = NewSelection()
	for _, folder := range v.folders {
		v.selection.Add(FolderRef(folder.ID))
	}
	for _, file := range ApplyFilter(v.files, v.filterType, v.searchTerm) {
		if ref, err := ParseKey(file.ID); err == nil {
			v.selection.Add(ref)
		}
	}
}

// ClearSelection empties the selection set.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = NewSelection()
}

// SelectionKeys returns the selection in insertion order.
func (v *View) SelectionKeys() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.Keys()
}

// CreateFolder creates a folder in the current folder and reloads the
// listing.
func (v *View) CreateFolder(ctx context.Context, name string) (model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, fmt.Errorf("%w: folder name is required", model.ErrInvalidInput)
	}

	v.mu.Lock()
	parent := cloneID(v.currentFolder)
	v.mu.Unlock()

	created, err := v.api.CreateFolder(ctx, v.session, name, parent)
	if err != nil {
		return model.Folder{}, err
	}

	if err := v.Reload(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// RenameFolder renames a folder and patches the displayed name in
// place. This is one of the two intentional optimistic updates: a
// refetch here would flash the whole grid for a one-field change.
func (v *View) RenameFolder(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: folder name is required", model.ErrInvalidInput)
	}

	if err := v.api.RenameFolder(ctx, v.session, id, name); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.folders {
		if v.folders[i].ID == id {
			v.folders[i].Name = name
			break
		}
	}
	return nil
}

// RenameFile renames a file and reloads the listing.
func (v *View) RenameFile(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: file name is required", model.ErrInvalidInput)
	}

	if err := v.api.RenameFile(ctx, v.session, id, name); err != nil {
		return err
	}

	return v.Reload(ctx)
}

// DeleteSelection deletes every selected node, splitting the keys
// into the backend's separate file and folder id lists. An empty
// selection issues no network call.
func (v *View) DeleteSelection(ctx context.Context) error {
	v.mu.Lock()
	refs := v.selection.Refs()
	v.mu.Unlock()

	fileIDs, folderIDs := Partition(refs)
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return nil
	}

	if err := v.api.BulkDelete(ctx, v.session, fileIDs, folderIDs); err != nil {
		return err
	}

	v.ClearSelection()
	return v.Reload(ctx)
}

// MoveSelection moves every selected node under target (nil = root).
// An empty selection issues no network call. Cycle prevention is the
// backend's job; its rejection surfaces as a domain error.
func (v *View) MoveSelection(ctx context.Context, targetParentID *int64) error {
	v.mu.Lock()
	refs := v.selection.Refs()
	v.mu.Unlock()

	return v.moveRefs(ctx, refs, targetParentID)
}

// BeginDrag produces the drag payload for a gesture starting on the
// given node. Dragging a selected node transfers the whole selection;
// dragging an unselected one transfers exactly that node and never
// implicitly selects its siblings.
func (v *View) BeginDrag(key string) ([]byte, error) {
	ref, err := ParseKey(key)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	refs := []Reference{ref}
	if v.selection.Has(ref) {
		refs = v.selection.Refs()
	}
	v.mu.Unlock()

	return EncodeTransfer(refs)
}

// Drop completes a drag gesture over a folder (or the root
// background, target nil): the payload is decoded, partitioned and
// moved. An empty payload issues no network call.
func (v *View) Drop(ctx context.Context, payload []byte, targetParentID *int64) error {
	refs, err := DecodeTransfer(payload)
	if err != nil {
		return err
	}

	return v.moveRefs(ctx, refs, targetParentID)
}

func (v *View) moveRefs(ctx context.Context, refs []Reference, targetParentID *int64) error {
	fileIDs, folderIDs := Partition(refs)
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return nil
	}

	if err := v.api.MoveItems(ctx, v.session, fileIDs, folderIDs, targetParentID); err != nil {
		return err
	}

	v.ClearSelection()
	return v.Reload(ctx)
}

// AttachTags attaches AI-suggested tags to a listed file. The second
// intentional optimistic update: tags are ephemeral client-side state
// and never persisted by the backend.
func (v *View) AttachTags(fileID string, tags []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.files {
		if v.files[i].ID == fileID {
			v.files[i].Tags = append([]string{}, tags...)
			return
		}
	}
}

// listedLocked reports whether a reference is present in the last
// fetched listing. Callers hold v.mu.
func (v *View) listedLocked(ref Reference) bool {
	if ref.Kind == KindFolder {
		for _, folder := range v.folders {
			if folder.ID == ref.ID {
				return true
			}
		}
		return false
	}

	key := ref.Key()
	for _, file := range v.files {
		if file.ID == key {
			return true
		}
	}
	return false
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
