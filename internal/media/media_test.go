package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestTranscodeShrinksAndConverts(t *testing.T) {
	out, err := Transcode(pngOf(t, 400, 100), Options{MaxDimension: 200, Quality: 80})
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestTranscodeKeepsSmallImages(t *testing.T) {
	out, err := Transcode(pngOf(t, 64, 48), Options{MaxDimension: 200})
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestTranscodeRejectsNonImages(t *testing.T) {
	_, err := Transcode(strings.NewReader("not an image"), Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}
