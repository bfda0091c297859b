package drive

import (
	"sort"
	"strings"

	"teledrive-web/internal/model"
)

// FilterAll disables type filtering.
const FilterAll = "all"

// ValidFilter reports whether a filter value is one the sidebar can
// produce.
func ValidFilter(filter string) bool {
	switch filter {
	case FilterAll, string(model.TypeImage), string(model.TypeVideo), string(model.TypeAudio), string(model.TypeDocument):
		return true
	}
	return false
}

// ApplyFilter projects a file listing through the active type filter
// and case-insensitive name search, newest first. The projection is
// pure and idempotent: re-applying it to its own output with the same
// parameters returns an identical ordered list.
func ApplyFilter(files []model.MediaFile, filter string, search string) []model.MediaFile {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]model.MediaFile, 0, len(files))
	for _, f := range files {
		if filter != FilterAll && filter != "" && string(f.Type) != filter {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(f.Name), needle) {
			continue
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateAdded.After(out[j].DateAdded)
	})

	return out
}
