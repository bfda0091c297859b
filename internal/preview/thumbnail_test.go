package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teledrive-web/internal/model"
)

type fakeSource struct {
	content []byte
	err     error
}

func (f *fakeSource) Download(ctx context.Context, session string, messageID int64, inline bool) (io.ReadCloser, string, int64, error) {
	if f.err != nil {
		return nil, "", 0, f.err
	}
	return io.NopCloser(bytes.NewReader(f.content)), "image/png", int64(len(f.content)), nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	t.Run("downscales a large image preserving aspect ratio", func(t *testing.T) {
		g := NewGenerator(&fakeSource{content: pngBytes(t, 1024, 512)}, 256)

		out, err := g.Thumbnail(context.Background(), "sess", 1)
		require.NoError(t, err)

		decoded, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 256, decoded.Bounds().Dx())
		assert.Equal(t, 128, decoded.Bounds().Dy())
	})

	t.Run("never upscales a small image", func(t *testing.T) {
		g := NewGenerator(&fakeSource{content: pngBytes(t, 64, 48)}, 256)

		out, err := g.Thumbnail(context.Background(), "sess", 1)
		require.NoError(t, err)

		decoded, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 64, decoded.Bounds().Dx())
		assert.Equal(t, 48, decoded.Bounds().Dy())
	})

	t.Run("propagates download failure", func(t *testing.T) {
		wantErr := errors.New("gone")
		g := NewGenerator(&fakeSource{err: wantErr}, 256)

		_, err := g.Thumbnail(context.Background(), "sess", 1)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		g := NewGenerator(&fakeSource{content: []byte("definitely not an image")}, 256)

		_, err := g.Thumbnail(context.Background(), "sess", 1)
		assert.ErrorIs(t, err, model.ErrInvalidTarget)
	})
}
