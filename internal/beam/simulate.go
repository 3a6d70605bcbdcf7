package beam

import (
	"context"
	"fmt"
	"math"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

// progressRowStep reports progress roughly every 10% of output rows.
const progressRowStep = 10

// Simulate computes the interference-intensity field for the payload's
// enabled descriptors. Cancellation is checked once per output row; a
// cancelled simulation returns an empty result and no error, which the
// caller treats as no result produced.
func Simulate(ctx context.Context, p *model.BeamJobPayload, progress func(float64)) (*model.BeamResult, error) {
	var elements []Element
	for i := range p.Descriptors {
		d := &p.Descriptors[i]
		if !d.IsEnabled() {
			continue
		}
		// Guard the arc-length division even for callers that bypass
		// struct validation.
		if d.Geometry == "curved" && d.CurvatureRadius <= 0 {
			return nil, fmt.Errorf("descriptor %d: curved geometry requires a positive curvature radius", i)
		}
		elements = append(elements, ExpandElements(d, p.Medium)...)
	}

	w, h := p.GridWidth, p.GridHeight
	result := &model.BeamResult{
		Width:     w,
		Height:    h,
		Intensity: make([]float32, w*h),
	}
	if len(elements) == 0 {
		return result, nil
	}

	rowStep := h / progressRowStep
	if rowStep < 1 {
		rowStep = 1
	}

	minI := math.Inf(1)
	maxI := math.Inf(-1)
	for y := 0; y < h; y++ {
		if ctx.Err() != nil {
			return &model.BeamResult{}, nil
		}
		// Physical coordinates centered on the field origin.
		py := (float64(y)+0.5)/float64(h)*p.FieldSize - p.FieldSize/2
		for x := 0; x < w; x++ {
			px := (float64(x)+0.5)/float64(w)*p.FieldSize - p.FieldSize/2

			var sumRe, sumIm float64
			for _, el := range elements {
				dx := px - el.X
				dy := py - el.Y
				dist := math.Sqrt(dx*dx + dy*dy)
				phase := el.K*dist + el.PhaseOffset
				sumRe += el.Amplitude * math.Cos(phase)
				sumIm += el.Amplitude * math.Sin(phase)
			}
			intensity := sumRe*sumRe + sumIm*sumIm
			result.Intensity[y*w+x] = float32(intensity)
			if intensity < minI {
				minI = intensity
			}
			if intensity > maxI {
				maxI = intensity
			}
		}
		if progress != nil && (y+1)%rowStep == 0 {
			progress(float64(y+1) / float64(h))
		}
	}

	result.Min = minI
	result.Max = maxI
	if p.Normalize && maxI > minI {
		scale := 1 / (maxI - minI)
		for i, v := range result.Intensity {
			result.Intensity[i] = float32((float64(v) - minI) * scale)
		}
		result.Min = 0
		result.Max = 1
	}
	return result, nil
}
