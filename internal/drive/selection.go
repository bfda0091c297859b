package drive

import (
	"fmt"
	"strconv"
	"strings"

	"teledrive-web/internal/model"
)

// folderKeyPrefix disambiguates folder keys from file keys on the
// wire: file ids and folder ids live in separate numeric namespaces,
// so folder id 7 becomes "f_7" while file id 7 stays "7".
const folderKeyPrefix = "f_"

// Kind tags a Reference as pointing at a file or a folder.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// Reference identifies one selectable node. The tagged variant
// replaces the ad hoc prefixed-string convention everywhere inside
// the process; the string form exists only at the wire boundary.
type Reference struct {
	Kind Kind
	ID   int64
}

func FileRef(id int64) Reference   { return Reference{Kind: KindFile, ID: id} }
func FolderRef(id int64) Reference { return Reference{Kind: KindFolder, ID: id} }

// Key renders the wire form of a reference.
func (r Reference) Key() string {
	if r.Kind == KindFolder {
		return folderKeyPrefix + strconv.FormatInt(r.ID, 10)
	}
	return strconv.FormatInt(r.ID, 10)
}

// ParseKey parses the wire form back into a Reference.
func ParseKey(key string) (Reference, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Reference{}, fmt.Errorf("%w: empty selection key", model.ErrInvalidInput)
	}

	kind := KindFile
	raw := key
	if strings.HasPrefix(key, folderKeyPrefix) {
		kind = KindFolder
		raw = key[len(folderKeyPrefix):]
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: malformed selection key %q", model.ErrInvalidInput, key)
	}

	return Reference{Kind: kind, ID: id}, nil
}

// Partition splits references into the two id lists the backend
// requires on bulk operations.
func Partition(refs []Reference) (fileIDs []int64, folderIDs []int64) {
	for _, ref := range refs {
		if ref.Kind == KindFolder {
			folderIDs = append(folderIDs, ref.ID)
		} else {
			fileIDs = append(fileIDs, ref.ID)
		}
	}
	return fileIDs, folderIDs
}

// Selection is an insertion-ordered set of references over the
// currently listed nodes. It is not safe for concurrent use; the
// owning view serializes access.
type Selection struct {
	members map[Reference]struct{}
	order   []Reference
}

func NewSelection() *Selection {
	return &Selection{members: map[Reference]struct{}{}}
}

func (s *Selection) Len() int {
	return len(s.members)
}

func (s *Selection) Has(ref Reference) bool {
	_, ok := s.members[ref]
	return ok
}

// Add inserts a reference, keeping first-insertion order.
func (s *Selection) Add(ref Reference) {
	if s.Has(ref) {
		return
	}
	s.members[ref] = struct{}{}
	s.order = append(s.order, ref)
}

// Remove drops a reference if present.
func (s *Selection) Remove(ref Reference) {
	if !s.Has(ref) {
		return
	}
	delete(s.members, ref)
	for i, existing := range s.order {
		if existing == ref {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle flips membership. Toggling the same reference twice restores
// the original set.
func (s *Selection) Toggle(ref Reference) {
	if s.Has(ref) {
		s.Remove(ref)
		return
	}
	s.Add(ref)
}

// Refs returns the members in insertion order.
func (s *Selection) Refs() []Reference {
	out := make([]Reference, len(s.order))
	copy(out, s.order)
	return out
}

// Keys returns the wire form of the members in insertion order.
func (s *Selection) Keys() []string {
	out := make([]string, 0, len(s.order))
	for _, ref := range s.order {
		out = append(out, ref.Key())
	}
	return out
}
