// Package mixer composes multiple images in the frequency domain under
// a geometric region mask with per-region channel weights.
package mixer

import (
	"fmt"
	"math"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

// Mask is a RegionMaskSpec resolved into pixel-space geometry for one
// job's field extent.
type Mask struct {
	Shape    string
	CenterX  float64
	CenterY  float64
	RadiusPx float64
	HalfWPx  float64
	HalfHPx  float64
	// Coverage is the fraction of the field the inside region spans.
	Coverage float64
}

// ResolveMask converts fractional mask geometry to pixel space.
func ResolveMask(spec model.RegionMaskSpec, width, height int) (*Mask, error) {
	m := &Mask{
		Shape:   spec.Shape,
		CenterX: float64(width-1) / 2,
		CenterY: float64(height-1) / 2,
	}
	switch spec.Shape {
	case "circle":
		if spec.Radius <= 0 {
			return nil, fmt.Errorf("circle mask requires a positive radius")
		}
		m.RadiusPx = spec.Radius * float64(min(width, height)) / 2
		m.Coverage = math.Min(1, math.Pi*m.RadiusPx*m.RadiusPx/float64(width*height))
	case "rect":
		if spec.Width <= 0 || spec.Height <= 0 {
			return nil, fmt.Errorf("rect mask requires positive width and height")
		}
		m.HalfWPx = spec.Width * float64(width) / 2
		m.HalfHPx = spec.Height * float64(height) / 2
		m.Coverage = math.Min(1, spec.Width*spec.Height)
	default:
		return nil, fmt.Errorf("unknown mask shape %q", spec.Shape)
	}
	return m, nil
}

// Inside reports whether the pixel at (x, y) falls in the mask region.
func (m *Mask) Inside(x, y int) bool {
	dx := float64(x) - m.CenterX
	dy := float64(y) - m.CenterY
	if m.Shape == "circle" {
		return dx*dx+dy*dy <= m.RadiusPx*m.RadiusPx
	}
	return math.Abs(dx) <= m.HalfWPx && math.Abs(dy) <= m.HalfHPx
}
