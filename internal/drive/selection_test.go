package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teledrive-web/internal/model"
)

func TestReferenceKey(t *testing.T) {
	t.Run("file and folder with the same id produce distinct keys", func(t *testing.T) {
		file := FileRef(7)
		folder := FolderRef(7)

		assert.Equal(t, "7", file.Key())
		assert.Equal(t, "f_7", folder.Key())
		assert.NotEqual(t, file.Key(), folder.Key())
	})
}

func TestParseKey(t *testing.T) {
	t.Run("round trips both kinds", func(t *testing.T) {
		for _, ref := range []Reference{FileRef(42), FolderRef(42), FileRef(0)} {
			parsed, err := ParseKey(ref.Key())
			require.NoError(t, err)
			assert.Equal(t, ref, parsed)
		}
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := ParseKey("  ")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("rejects non-numeric key", func(t *testing.T) {
		_, err := ParseKey("f_abc")
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = ParseKey("abc")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestPartition(t *testing.T) {
	refs := []Reference{FileRef(1), FolderRef(2), FileRef(3), FolderRef(4)}

	fileIDs, folderIDs := Partition(refs)

	assert.Equal(t, []int64{1, 3}, fileIDs)
	assert.Equal(t, []int64{2, 4}, folderIDs)
}

func TestSelection(t *testing.T) {
	t.Run("toggle twice restores the original set", func(t *testing.T) {
		s := NewSelection()
		s.Add(FileRef(1))
		s.Add(FolderRef(2))

		s.Toggle(FileRef(9))
		s.Toggle(FileRef(9))

		assert.Equal(t, []string{"1", "f_2"}, s.Keys())
	})

	t.Run("add is idempotent and keeps insertion order", func(t *testing.T) {
		s := NewSelection()
		s.Add(FolderRef(5))
		s.Add(FileRef(1))
		s.Add(FolderRef(5))

		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []string{"f_5", "1"}, s.Keys())
	})

	t.Run("remove preserves order of the rest", func(t *testing.T) {
		s := NewSelection()
		s.Add(FileRef(1))
		s.Add(FileRef(2))
		s.Add(FileRef(3))

		s.Remove(FileRef(2))

		assert.Equal(t, []string{"1", "3"}, s.Keys())
	})

	t.Run("file and folder with the same id are independent members", func(t *testing.T) {
		s := NewSelection()
		s.Add(FileRef(7))
		s.Add(FolderRef(7))

		require.Equal(t, 2, s.Len())
		s.Remove(FileRef(7))

		assert.False(t, s.Has(FileRef(7)))
		assert.True(t, s.Has(FolderRef(7)))
	})
}
