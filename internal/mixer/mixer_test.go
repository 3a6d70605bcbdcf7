package mixer

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/capability"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pixel"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/spectral"
)

func testEngine() *spectral.Engine {
	return spectral.NewEngine(capability.Detect(), 0)
}

func randomLuma(w, h int, seed int64) *pixel.Buffer {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]byte, w*h)
	rng.Read(samples)
	return &pixel.Buffer{Width: w, Height: h, Channels: pixel.ChannelsLuminance, Samples: samples}
}

// fullMask covers the whole field so every pixel takes inner weights.
func fullMask() model.RegionMaskSpec {
	return model.RegionMaskSpec{Shape: "rect", Width: 1, Height: 1}
}

func unitWeights(slots ...string) map[string]model.WeightPair {
	m := make(map[string]model.WeightPair, len(slots))
	for _, s := range slots {
		m[s] = model.WeightPair{W1: 1, W2: 1}
	}
	return m
}

func TestMixIdentityRealImag(t *testing.T) {
	// One image, full mask, unit weights: the mix is the identity up to
	// transform rounding.
	src := randomLuma(8, 8, 1)
	req := &Request{
		SlotIDs: []string{"a"},
		Images:  []*pixel.Buffer{src},
		Mask:    fullMask(),
		Inner:   unitWeights("a"),
		Outer:   unitWeights("a"),
		Mode:    ModeRealImag,
	}

	out, backend, err := Mix(context.Background(), testEngine(), req, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if backend == "" {
		t.Error("expected a backend name")
	}
	if out.Width != 8 || out.Height != 8 {
		t.Fatalf("expected 8x8 output, got %dx%d", out.Width, out.Height)
	}
	for i := range out.Samples {
		diff := int(out.Samples[i]) - int(src.Samples[i])
		if diff < -1 || diff > 1 {
			t.Fatalf("sample %d = %d, want %d", i, out.Samples[i], src.Samples[i])
		}
	}
}

func TestMixIdentityMagPhase(t *testing.T) {
	// Unit weights reconstruct mag*cos(phase) and mag*sin(phase), which
	// for a single image is the original spectrum.
	src := randomLuma(8, 8, 2)
	req := &Request{
		SlotIDs: []string{"a"},
		Images:  []*pixel.Buffer{src},
		Mask:    fullMask(),
		Inner:   unitWeights("a"),
		Outer:   unitWeights("a"),
		Mode:    ModeMagPhase,
	}

	out, _, err := Mix(context.Background(), testEngine(), req, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	for i := range out.Samples {
		diff := int(out.Samples[i]) - int(src.Samples[i])
		if diff < -1 || diff > 1 {
			t.Fatalf("sample %d = %d, want %d", i, out.Samples[i], src.Samples[i])
		}
	}
}

func TestMixZeroWeightsBlackOutput(t *testing.T) {
	src := randomLuma(8, 8, 3)
	req := &Request{
		SlotIDs: []string{"a"},
		Images:  []*pixel.Buffer{src},
		Mask:    fullMask(),
		Inner:   map[string]model.WeightPair{"a": {}},
		Outer:   map[string]model.WeightPair{"a": {}},
		Mode:    ModeRealImag,
	}

	out, _, err := Mix(context.Background(), testEngine(), req, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	for i, v := range out.Samples {
		if v != 0 {
			t.Fatalf("sample %d = %d, want 0", i, v)
		}
	}
}

func TestMixBrightnessShift(t *testing.T) {
	src := randomLuma(8, 8, 4)
	req := &Request{
		SlotIDs: []string{"a"},
		Images:  []*pixel.Buffer{src},
		Mask:    fullMask(),
		Inner:   unitWeights("a"),
		Outer:   unitWeights("a"),
		Mode:    ModeRealImag,
		Brightness: model.BrightnessConfig{
			Target:   "spatial",
			Value:    40,
			Contrast: 1,
		},
	}

	out, _, err := Mix(context.Background(), testEngine(), req, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	for i := range out.Samples {
		want := int(src.Samples[i]) + 40
		if want > 255 {
			want = 255
		}
		diff := int(out.Samples[i]) - want
		if diff < -1 || diff > 1 {
			t.Fatalf("sample %d = %d, want %d", i, out.Samples[i], want)
		}
	}
}

func TestMixProgressPoints(t *testing.T) {
	src := randomLuma(4, 4, 5)
	req := &Request{
		SlotIDs: []string{"a"},
		Images:  []*pixel.Buffer{src},
		Mask:    fullMask(),
		Inner:   unitWeights("a"),
		Outer:   unitWeights("a"),
		Mode:    ModeRealImag,
	}

	var seen []float64
	_, _, err := Mix(context.Background(), testEngine(), req, func(p float64) {
		seen = append(seen, p)
	})
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != 0.30 || seen[1] != 0.70 {
		t.Errorf("expected progress [0.30 0.70], got %v", seen)
	}
}

func TestMixValidation(t *testing.T) {
	base := func() *Request {
		return &Request{
			SlotIDs: []string{"a", "b"},
			Images:  []*pixel.Buffer{randomLuma(4, 4, 6), randomLuma(4, 4, 7)},
			Mask:    fullMask(),
			Inner:   unitWeights("a", "b"),
			Outer:   unitWeights("a", "b"),
			Mode:    ModeRealImag,
		}
	}

	t.Run("no images", func(t *testing.T) {
		req := base()
		req.SlotIDs = nil
		req.Images = nil
		if _, _, err := Mix(context.Background(), testEngine(), req, nil); !errors.Is(err, ErrNoImages) {
			t.Errorf("expected ErrNoImages, got %v", err)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		req := base()
		req.Images[1] = randomLuma(8, 4, 8)
		if _, _, err := Mix(context.Background(), testEngine(), req, nil); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		req := base()
		req.Mode = "complex"
		if _, _, err := Mix(context.Background(), testEngine(), req, nil); err == nil {
			t.Error("expected error for unknown mode")
		}
	})

	t.Run("bad contrast", func(t *testing.T) {
		// Contrast is checked for every supplied brightness config,
		// including target "none".
		for _, target := range []string{"spatial", "none"} {
			for _, c := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				req := base()
				req.Brightness = model.BrightnessConfig{Target: target, Contrast: c}
				if _, _, err := Mix(context.Background(), testEngine(), req, nil); err == nil {
					t.Errorf("expected error for target %q contrast %v", target, c)
				}
			}
		}
	})

	t.Run("absent brightness config", func(t *testing.T) {
		req := base()
		req.Brightness = model.BrightnessConfig{}
		if _, _, err := Mix(context.Background(), testEngine(), req, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing inner weights", func(t *testing.T) {
		req := base()
		delete(req.Inner, "b")
		if _, _, err := Mix(context.Background(), testEngine(), req, nil); err == nil {
			t.Error("expected error for slot without inner weights")
		}
	})

	t.Run("missing outer weights", func(t *testing.T) {
		req := base()
		delete(req.Outer, "a")
		if _, _, err := Mix(context.Background(), testEngine(), req, nil); err == nil {
			t.Error("expected error for slot without outer weights")
		}
	})
}

func TestMixCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := &Request{
		SlotIDs: []string{"a"},
		Images:  []*pixel.Buffer{randomLuma(4, 4, 9)},
		Mask:    fullMask(),
		Inner:   unitWeights("a"),
		Outer:   unitWeights("a"),
		Mode:    ModeRealImag,
	}
	if _, _, err := Mix(ctx, testEngine(), req, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestResolveMask(t *testing.T) {
	t.Run("circle", func(t *testing.T) {
		m, err := ResolveMask(model.RegionMaskSpec{Shape: "circle", Radius: 0.5}, 16, 16)
		if err != nil {
			t.Fatalf("ResolveMask failed: %v", err)
		}
		if m.RadiusPx != 4 {
			t.Errorf("expected radius 4px, got %g", m.RadiusPx)
		}
		if !m.Inside(8, 8) {
			t.Error("center should be inside")
		}
		if m.Inside(0, 0) {
			t.Error("corner should be outside")
		}
	})

	t.Run("rect", func(t *testing.T) {
		m, err := ResolveMask(model.RegionMaskSpec{Shape: "rect", Width: 0.5, Height: 0.5}, 16, 16)
		if err != nil {
			t.Fatalf("ResolveMask failed: %v", err)
		}
		if !m.Inside(8, 8) {
			t.Error("center should be inside")
		}
		if m.Inside(0, 8) {
			t.Error("left edge should be outside")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ResolveMask(model.RegionMaskSpec{Shape: "circle"}, 8, 8); err == nil {
			t.Error("expected error for zero radius")
		}
		if _, err := ResolveMask(model.RegionMaskSpec{Shape: "hex", Radius: 1}, 8, 8); err == nil {
			t.Error("expected error for unknown shape")
		}
	})
}
