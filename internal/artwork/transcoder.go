package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	"image/png"

	_ "golang.org/x/image/bmp" // BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Transcoder errors.
var (
	ErrInvalidSize = errors.New("thumbnail size must be positive")
	ErrEmptyImage  = errors.New("image has no pixels")
)

// Transcoder produces square PNG thumbnails from arbitrary image bytes.
type Transcoder struct {
	encoder png.Encoder
}

// NewTranscoder creates a transcoder using best-speed PNG compression.
func NewTranscoder() *Transcoder {
	return &Transcoder{encoder: png.Encoder{CompressionLevel: png.BestSpeed}}
}

// Thumbnail decodes data, crops the centre square and scales it down to
// at most size pixels per edge. Images smaller than size keep their
// native short edge.
func (t *Transcoder) Thumbnail(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	crop := centreSquare(src.Bounds())
	if crop.Empty() {
		return nil, ErrEmptyImage
	}

	edge := crop.Dx()
	if edge > size {
		edge = size
	}

	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := t.encoder.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// centreSquare returns the largest square centred inside b.
func centreSquare(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}
