package pixel

import (
	"fmt"
	"image"
)

// Channel counts for Buffer
const (
	ChannelsLuminance = 1
	ChannelsRGBA      = 4
)

// Buffer is a packed 8-bit pixel buffer, row-major.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Samples  []byte
}

// Validate checks the sample slice against the declared geometry.
func (b *Buffer) Validate() error {
	if b.Width < 1 || b.Height < 1 {
		return fmt.Errorf("invalid buffer dimensions %dx%d", b.Width, b.Height)
	}
	if b.Channels != ChannelsLuminance && b.Channels != ChannelsRGBA {
		return fmt.Errorf("unsupported channel count %d", b.Channels)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Samples) != want {
		return fmt.Errorf("sample length %d does not match %dx%dx%d", len(b.Samples), b.Width, b.Height, b.Channels)
	}
	return nil
}

// FromRGBA wraps an image.RGBA as a 4-channel buffer. The image must
// have a zero-origin bounds, which is what our decode path produces.
func FromRGBA(img *image.RGBA) *Buffer {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	buf := &Buffer{Width: w, Height: h, Channels: ChannelsRGBA, Samples: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		copy(buf.Samples[y*w*4:(y+1)*w*4], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}
	return buf
}

// Luminance converts an RGBA buffer to single-channel luminance using
// the Rec. 601 weights 0.299/0.587/0.114, rounded to nearest.
// A luminance input is returned unchanged.
func Luminance(src *Buffer) (*Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if src.Channels == ChannelsLuminance {
		return src, nil
	}
	out := &Buffer{
		Width:    src.Width,
		Height:   src.Height,
		Channels: ChannelsLuminance,
		Samples:  make([]byte, src.Width*src.Height),
	}
	for i := 0; i < len(out.Samples); i++ {
		r := float64(src.Samples[i*4])
		g := float64(src.Samples[i*4+1])
		b := float64(src.Samples[i*4+2])
		out.Samples[i] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
	}
	return out, nil
}
