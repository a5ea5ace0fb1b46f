package imageproc_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/imageproc"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 50 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	p := imageproc.New(imageproc.Options{MaxDimension: 1000})

	out, name, err := p.Process(encodePNG(t, 4000, 3000))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, 1000)
	assert.LessOrEqual(t, cfg.Height, 1000)
	assert.Equal(t, 1000, cfg.Width)
	assert.InDelta(t, 750, cfg.Height, 1)
	assert.Regexp(t, `^[0-9a-f-]{36}\.jpg$`, name)
}

func TestProcessKeepsSmallImageSize(t *testing.T) {
	p := imageproc.New(imageproc.Options{})

	out, _, err := p.Process(encodePNG(t, 300, 200))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestProcessNamesAreNeverReused(t *testing.T) {
	p := imageproc.New(imageproc.Options{})
	raw := encodePNG(t, 20, 20)

	_, a, err := p.Process(raw)
	require.NoError(t, err)
	_, b, err := p.Process(raw)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestProcessCorruptPayload(t *testing.T) {
	p := imageproc.New(imageproc.Options{})

	_, _, err := p.Process([]byte("definitely not an image"))
	assert.ErrorIs(t, err, apperr.ErrDecode)

	_, _, err = p.Process(nil)
	assert.ErrorIs(t, err, apperr.ErrDecode)
}

func TestProcessRejectsOversizedPayload(t *testing.T) {
	p := imageproc.New(imageproc.Options{MaxBytes: 10})

	_, _, err := p.Process(encodePNG(t, 20, 20))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// pngHeader is a PNG whose IHDR claims w x h; the pixel data is missing.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth; colour type 0 (gray)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr))) //nolint:errcheck
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk)) //nolint:errcheck
	return buf.Bytes()
}

func TestProcessRejectsHugeRasterBeforeDecoding(t *testing.T) {
	p := imageproc.New(imageproc.Options{})

	_, _, err := p.Process(pngHeader(50000, 50000))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProcessPixelLimitIsConfigurable(t *testing.T) {
	p := imageproc.New(imageproc.Options{MaxPixels: 399})

	_, _, err := p.Process(encodePNG(t, 20, 20))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, _, err = p.Process(encodePNG(t, 19, 21))
	assert.NoError(t, err)
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, max, ww, wh int
	}{
		{4000, 3000, 1000, 1000, 750},
		{3000, 4000, 1000, 750, 1000},
		{1000, 1000, 1000, 1000, 1000},
		{500, 20000, 1000, 25, 1000},
		{999, 10, 1000, 999, 10},
	}
	for _, c := range cases {
		w, h := imageproc.FitWithin(c.w, c.h, c.max)
		assert.Equal(t, c.ww, w, "%dx%d", c.w, c.h)
		assert.Equal(t, c.wh, h, "%dx%d", c.w, c.h)
	}
}
