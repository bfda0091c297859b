package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"

	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"teledrive-web/internal/model"
	"teledrive-web/internal/util"
)

// maxSourceBytes caps how much of a remote file is read before
// decoding. Anything larger is not worth thumbnailing inline.
const maxSourceBytes = 32 << 20

// Source streams a stored file's content by transport message id.
type Source interface {
	Download(ctx context.Context, session string, messageID int64, inline bool) (io.ReadCloser, string, int64, error)
}

// Generator renders JPEG thumbnails for stored images.
type Generator struct {
	source    Source
	maxPixels int
}

func NewGenerator(source Source, maxPixels int) *Generator {
	return &Generator{source: source, maxPixels: maxPixels}
}

// Thumbnail downloads an image and scales it so its longer side is at
// most the configured pixel bound. The result is always JPEG
// regardless of the source format.
func (g *Generator) Thumbnail(ctx context.Context, session string, messageID int64) ([]byte, error) {
	body, _, _, err := g.source.Download(ctx, session, messageID, true)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	mime, content, err := util.SniffMIME(io.LimitReader(body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("sniff content %d: %w", messageID, err)
	}
	if !util.IsImageMIME(mime) {
		return nil, fmt.Errorf("%w: %s is not an image", model.ErrInvalidTarget, mime)
	}

	src, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", messageID, err)
	}

	return encodeScaled(src, g.maxPixels)
}

func encodeScaled(src image.Image, size int) ([]byte, error) {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	maxDim := width
	if height > maxDim {
		maxDim = height
	}

	scale := float64(size) / float64(maxDim)
	if scale > 1 {
		scale = 1
	}

	targetWidth := int(math.Round(float64(width) * scale))
	targetHeight := int(math.Round(float64(height) * scale))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
