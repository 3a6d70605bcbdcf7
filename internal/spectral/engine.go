package spectral

import (
	"context"
	"fmt"
	"log"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/capability"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pixel"
)

// DefaultMaxNativeElements caps the grid size served by the native
// backend; larger transforms fall back to the portable implementation.
const DefaultMaxNativeElements = 4_194_304

// Engine pads, transforms and crops 2D fields. It is safe for
// concurrent use; all per-call state is local.
type Engine struct {
	native       Backend // nil when setup failed
	portable     Backend
	maxNative    int
	preferNative bool
}

// NewEngine builds an engine from the startup capability record.
// maxNativeElements <= 0 selects DefaultMaxNativeElements.
func NewEngine(caps capability.Record, maxNativeElements int) *Engine {
	if maxNativeElements <= 0 {
		maxNativeElements = DefaultMaxNativeElements
	}
	e := &Engine{
		portable:     newPortableBackend(),
		maxNative:    maxNativeElements,
		preferNative: caps.PreferNative,
	}
	native, err := newNativeBackend()
	if err != nil {
		// Backend setup failure is recovered locally, never surfaced.
		log.Printf("native transform backend unavailable, using portable: %v", err)
		return e
	}
	e.native = native
	return e
}

// Forward transforms a luminance buffer into a frequency-domain field,
// padding both axes to powers of two.
func (e *Engine) Forward(ctx context.Context, buf *pixel.Buffer, pref Preference) (*Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if buf.Channels != pixel.ChannelsLuminance {
		return nil, fmt.Errorf("forward transform requires a luminance buffer, got %d channels", buf.Channels)
	}

	padW := NextPow2(buf.Width)
	padH := NextPow2(buf.Height)
	data := make([]complex128, padW*padH)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			data[y*padW+x] = complex(float64(buf.Samples[y*buf.Width+x]), 0)
		}
	}

	backend := e.pick(pref, padW*padH)
	if err := backend.FFT2D(data, padW, padH); err != nil {
		if backend.Name() == BackendNative {
			backend = e.portable
			if err := backend.FFT2D(data, padW, padH); err != nil {
				return nil, fmt.Errorf("forward transform: %w", err)
			}
		} else {
			return nil, fmt.Errorf("forward transform: %w", err)
		}
	}

	return fieldFromComplex(data, padW, padH, buf.Width, buf.Height, backend.Name()), nil
}

// Inverse transforms a field back to the spatial domain and crops the
// padding region, returning OrigWidth*OrigHeight real samples.
func (e *Engine) Inverse(ctx context.Context, f *Field, pref Preference) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := f.complexSamples()

	backend := e.pick(pref, f.Len())
	if err := backend.IFFT2D(data, f.Width, f.Height); err != nil {
		if backend.Name() == BackendNative {
			backend = e.portable
			data = f.complexSamples()
			if err := backend.IFFT2D(data, f.Width, f.Height); err != nil {
				return nil, fmt.Errorf("inverse transform: %w", err)
			}
		} else {
			return nil, fmt.Errorf("inverse transform: %w", err)
		}
	}

	out := make([]float32, f.OrigWidth*f.OrigHeight)
	for y := 0; y < f.OrigHeight; y++ {
		for x := 0; x < f.OrigWidth; x++ {
			out[y*f.OrigWidth+x] = float32(real(data[y*f.Width+x]))
		}
	}
	return out, nil
}

func (e *Engine) pick(pref Preference, elements int) Backend {
	if e.native == nil || pref == PreferPortable {
		return e.portable
	}
	if elements > e.maxNative {
		return e.portable
	}
	if pref == PreferNative || e.preferNative {
		return e.native
	}
	return e.portable
}
