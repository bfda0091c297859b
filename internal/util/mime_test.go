package util

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffMIME(t *testing.T) {
	t.Parallel()

	t.Run("detects png and replays the full stream", func(t *testing.T) {
		content := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xAB}, 600)...)

		mime, replay, err := SniffMIME(bytes.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, "image/png", mime)

		got, err := io.ReadAll(replay)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("handles streams shorter than the sniff window", func(t *testing.T) {
		mime, replay, err := SniffMIME(bytes.NewReader([]byte("hi")))
		require.NoError(t, err)
		assert.Equal(t, "text/plain; charset=utf-8", mime)

		got, err := io.ReadAll(replay)
		require.NoError(t, err)
		assert.Equal(t, []byte("hi"), got)
	})
}

func TestIsImageMIME(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImageMIME("image/png"))
	assert.True(t, IsImageMIME(" IMAGE/JPEG "))
	assert.False(t, IsImageMIME("video/mp4"))
	assert.False(t, IsImageMIME(""))
}
