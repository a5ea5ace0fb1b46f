// Package imageproc turns an uploaded photo into a bounded-size JPEG with a
// fresh random filename.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/shashiranjanraj/foodineye/pkg/apperr"
)

const (
	// DefaultMaxDimension bounds both sides of a processed image.
	DefaultMaxDimension = 1000
	// DefaultMaxPixels bounds the decoded size of an upload (about 200 MB
	// as RGBA).
	DefaultMaxPixels = 50_000_000
	// Extension is appended to every generated filename.
	Extension = ".jpg"
	// ContentType is the MIME type of processed output.
	ContentType = "image/jpeg"
)

// Options configures a Processor.
type Options struct {
	MaxDimension int
	Quality      int
	MaxBytes     int64
	MaxPixels    int64
}

// Processor decodes, downsizes and re-encodes images.
type Processor struct {
	maxDim   int
	quality  int
	maxBytes int64
	maxPix   int64
	newName  func() string
}

// New returns a Processor. Zero options take the package defaults.
func New(opts Options) *Processor {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = jpeg.DefaultQuality
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	return &Processor{
		maxDim:   opts.MaxDimension,
		quality:  opts.Quality,
		maxBytes: opts.MaxBytes,
		maxPix:   opts.MaxPixels,
		newName:  func() string { return uuid.NewString() + Extension },
	}
}

// Process decodes raw, shrinks it to fit within MaxDimension on both sides
// (aspect ratio kept, never enlarged) and encodes it as JPEG. The returned
// filename is random and never derived from content.
func (p *Processor) Process(raw []byte) ([]byte, string, error) {
	if len(raw) == 0 {
		return nil, "", apperr.E(apperr.KindDecode, "empty image payload", nil)
	}
	if p.maxBytes > 0 && int64(len(raw)) > p.maxBytes {
		return nil, "", apperr.Validation(fmt.Sprintf("image exceeds %d bytes", p.maxBytes))
	}

	// The header is enough to refuse images whose raster would not fit.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", apperr.E(apperr.KindDecode, "payload is not a supported image", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > p.maxPix {
		return nil, "", apperr.Validation(fmt.Sprintf("image is %dx%d; at most %d pixels are accepted", cfg.Width, cfg.Height, p.maxPix))
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", apperr.E(apperr.KindDecode, "payload is not a supported image", err)
	}

	dst := p.fit(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, "", apperr.E(apperr.KindInternal, "encode image", err)
	}
	return buf.Bytes(), p.newName(), nil
}

func (p *Processor) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), p.maxDim)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// FitWithin returns the largest size no bigger than max on either side that
// keeps the w:h ratio. Sizes already within bounds are returned unchanged.
func FitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(max)/float64(w) + 0.5)
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := int(float64(w)*float64(max)/float64(h) + 0.5)
	if nw < 1 {
		nw = 1
	}
	return nw, max
}
