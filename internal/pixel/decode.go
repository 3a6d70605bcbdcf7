package pixel

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxDimension caps decoded images on either axis.
const DefaultMaxDimension = 1024

// DecodeOptions controls decode and bounded resizing.
type DecodeOptions struct {
	TargetWidth  int // 0 means derive from source
	TargetHeight int
	MaxDimension int // 0 means DefaultMaxDimension
}

// Decode decodes encoded image bytes, resizes within bounds and
// returns a luminance buffer. The mime argument is informational; the
// actual format is sniffed from the magic bytes. ctx is checked at the
// decode and resample boundaries.
func Decode(ctx context.Context, data []byte, mime string, opts DecodeOptions) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", mime, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := targetSize(src.Bounds().Dx(), src.Bounds().Dy(), opts)
	rgba := resample(src, w, h)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Luminance(FromRGBA(rgba))
}

func targetSize(srcW, srcH int, opts DecodeOptions) (int, int) {
	w, h := srcW, srcH
	if opts.TargetWidth > 0 {
		w = opts.TargetWidth
	}
	if opts.TargetHeight > 0 {
		h = opts.TargetHeight
	}

	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	// Shrink preserving aspect ratio until both axes fit the cap.
	if w > maxDim {
		h = h * maxDim / w
		w = maxDim
	}
	if h > maxDim {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func resample(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
