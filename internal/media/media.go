// Package media normalises uploaded pictures into bounded JPEG files.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var ErrUnsupported = errors.New("unsupported image format")

// MaxUploadBytes bounds what a single upload may read.
const MaxUploadBytes = 10 << 20

type Options struct {
	// MaxDimension caps both width and height; 0 disables resizing.
	MaxDimension int
	Quality      int
}

// Transcode decodes a JPEG, PNG, GIF or WebP image, shrinks it to fit inside
// MaxDimension keeping the aspect ratio, and re-encodes it as JPEG.
func Transcode(r io.Reader, opts Options) ([]byte, error) {
	img, _, err := image.Decode(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if limit := opts.MaxDimension; limit > 0 && (b.Dx() > limit || b.Dy() > limit) {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
