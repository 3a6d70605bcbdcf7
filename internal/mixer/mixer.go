package mixer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pixel"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/spectral"
)

// Mixing algebras
const (
	ModeRealImag = "real-imag"
	ModeMagPhase = "mag-phase"
)

var (
	ErrNoImages          = errors.New("at least one input image is required")
	ErrDimensionMismatch = errors.New("input images must share identical dimensions")
)

// Request carries everything one mix job needs.
type Request struct {
	SlotIDs    []string
	Images     []*pixel.Buffer // luminance, parallel to SlotIDs
	Mask       model.RegionMaskSpec
	Inner      map[string]model.WeightPair
	Outer      map[string]model.WeightPair
	Mode       string
	Brightness model.BrightnessConfig
	Preference spectral.Preference
}

// Progress points: forward transforms done, mixing done.
const (
	progressForward = 0.30
	progressMixed   = 0.70
)

// Mix runs the full frequency-domain composition and returns the mixed
// luminance buffer plus the backend that served the transforms. ctx is
// observed at the three phase boundaries.
func Mix(ctx context.Context, engine *spectral.Engine, req *Request, progress func(float64)) (*pixel.Buffer, string, error) {
	if err := validate(req); err != nil {
		return nil, "", err
	}

	// Phase 1: forward-transform every input independently.
	fields := make([]*spectral.Field, len(req.Images))
	for i, img := range req.Images {
		f, err := engine.Forward(ctx, img, req.Preference)
		if err != nil {
			return nil, "", fmt.Errorf("forward transform of slot %s: %w", req.SlotIDs[i], err)
		}
		fields[i] = f
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if progress != nil {
		progress(progressForward)
	}

	// Phase 2: per-pixel masked accumulation across all fields.
	padW, padH := fields[0].Width, fields[0].Height
	mask, err := ResolveMask(req.Mask, padW, padH)
	if err != nil {
		return nil, "", err
	}
	acc := accumulate(fields, req, mask, padW, padH)

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if progress != nil {
		progress(progressMixed)
	}

	// Phase 3: inverse transform, brightness, clamp.
	mixed := &spectral.Field{
		Width:      padW,
		Height:     padH,
		OrigWidth:  req.Images[0].Width,
		OrigHeight: req.Images[0].Height,
		Real:       acc.re,
		Imag:       acc.im,
		Backend:    fields[0].Backend,
	}
	samples, err := engine.Inverse(ctx, mixed, req.Preference)
	if err != nil {
		return nil, "", fmt.Errorf("inverse transform: %w", err)
	}

	out := &pixel.Buffer{
		Width:    mixed.OrigWidth,
		Height:   mixed.OrigHeight,
		Channels: pixel.ChannelsLuminance,
		Samples:  make([]byte, len(samples)),
	}
	spatial := req.Brightness.Target == "spatial"
	for i, v := range samples {
		f := float64(v)
		if spatial {
			f = (f + req.Brightness.Value) * req.Brightness.Contrast
		}
		out.Samples[i] = clamp8(f)
	}
	return out, mixed.Backend, nil
}

type accumulator struct {
	re, im []float32
}

func accumulate(fields []*spectral.Field, req *Request, mask *Mask, padW, padH int) accumulator {
	acc := accumulator{
		re: make([]float32, padW*padH),
		im: make([]float32, padW*padH),
	}
	for y := 0; y < padH; y++ {
		for x := 0; x < padW; x++ {
			idx := y*padW + x
			inside := mask.Inside(x, y)

			switch req.Mode {
			case ModeMagPhase:
				var accMag, accPhase float64
				for i, f := range fields {
					w := weightFor(req, req.SlotIDs[i], inside)
					re := float64(f.Real[idx])
					im := float64(f.Imag[idx])
					accMag += math.Hypot(re, im) * w.W1
					accPhase += math.Atan2(im, re) * w.W2
				}
				acc.re[idx] = float32(accMag * math.Cos(accPhase))
				acc.im[idx] = float32(accMag * math.Sin(accPhase))
			default: // real-imag
				var accRe, accIm float64
				for i, f := range fields {
					w := weightFor(req, req.SlotIDs[i], inside)
					accRe += float64(f.Real[idx]) * w.W1
					accIm += float64(f.Imag[idx]) * w.W2
				}
				acc.re[idx] = float32(accRe)
				acc.im[idx] = float32(accIm)
			}
		}
	}
	return acc
}

func weightFor(req *Request, slotID string, inside bool) model.WeightPair {
	if inside {
		return req.Inner[slotID]
	}
	return req.Outer[slotID]
}

func validate(req *Request) error {
	if len(req.Images) == 0 {
		return ErrNoImages
	}
	if len(req.SlotIDs) != len(req.Images) {
		return fmt.Errorf("%d slot ids for %d images", len(req.SlotIDs), len(req.Images))
	}
	w, h := req.Images[0].Width, req.Images[0].Height
	for i, img := range req.Images {
		if err := img.Validate(); err != nil {
			return fmt.Errorf("slot %s: %w", req.SlotIDs[i], err)
		}
		if img.Channels != pixel.ChannelsLuminance {
			return fmt.Errorf("slot %s: mix requires luminance buffers", req.SlotIDs[i])
		}
		if img.Width != w || img.Height != h {
			return fmt.Errorf("%w: slot %s is %dx%d, expected %dx%d",
				ErrDimensionMismatch, req.SlotIDs[i], img.Width, img.Height, w, h)
		}
	}
	for _, id := range req.SlotIDs {
		if _, ok := req.Inner[id]; !ok {
			return fmt.Errorf("no inner weights for slot %s", id)
		}
		if _, ok := req.Outer[id]; !ok {
			return fmt.Errorf("no outer weights for slot %s", id)
		}
	}
	if req.Mode != ModeRealImag && req.Mode != ModeMagPhase {
		return fmt.Errorf("unknown mixing mode %q", req.Mode)
	}
	// Any supplied brightness config must carry a usable contrast, even
	// when the target disables the adjustment.
	if req.Brightness.Target != "" {
		c := req.Brightness.Contrast
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return fmt.Errorf("brightness contrast must be finite and positive, got %v", c)
		}
	}
	return nil
}

func clamp8(v float64) byte {
	r := math.Round(v)
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return byte(r)
}
