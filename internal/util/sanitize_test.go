package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("replaces unsafe characters", func(t *testing.T) {
		actual, err := SanitizeFilename(` report<2026>?.pdf `, false)
		require.NoError(t, err)
		require.Equal(t, "report_2026__.pdf", actual)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := SanitizeFilename("   ", false)
		require.Error(t, err)
	})

	t.Run("rejects hidden names unless allowed", func(t *testing.T) {
		_, err := SanitizeFilename(".env", false)
		require.Error(t, err)

		actual, err := SanitizeFilename(".env", true)
		require.NoError(t, err)
		require.Equal(t, ".env", actual)
	})

	t.Run("rejects reserved device names", func(t *testing.T) {
		_, err := SanitizeFilename("CON.txt", false)
		require.Error(t, err)
	})

	t.Run("rejects dot-relative names", func(t *testing.T) {
		for _, name := range []string{".", ".."} {
			_, err := SanitizeFilename(name, true)
			require.Error(t, err, name)
		}
	})

	t.Run("strips invisible runes", func(t *testing.T) {
		actual, err := SanitizeFilename("file\u200B\u200C\u200D\u2060\uFEFFname.txt", false)
		require.NoError(t, err)
		require.Equal(t, "filename.txt", actual)
	})

	t.Run("rejects names that vanish after stripping", func(t *testing.T) {
		_, err := SanitizeFilename("\u200B\u200C\u200D", false)
		require.Error(t, err)
	})

	t.Run("truncates by runes not bytes", func(t *testing.T) {
		input := strings.Repeat("é", 260) + ".txt"

		actual, err := SanitizeFilename(input, false)
		require.NoError(t, err)
		require.LessOrEqual(t, len([]rune(actual)), 255)
		require.True(t, utf8.ValidString(actual))
	})
}
