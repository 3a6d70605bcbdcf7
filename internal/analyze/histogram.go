// Package analyze extracts scalar components from frequency-domain
// fields and computes visualization statistics.
package analyze

import (
	"context"
	"fmt"
	"math"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/spectral"
)

// Spectral components
const (
	ComponentMagnitude = "magnitude"
	ComponentPhase     = "phase"
	ComponentReal      = "real"
	ComponentImag      = "imag"
)

// HistogramBins is the fixed histogram resolution.
const HistogramBins = 256

// Analyze extracts the requested component, recenters the DC term and
// computes the histogram, summary statistics and an 8-bit visual
// buffer. Magnitude is log1p-compressed before statistics so the
// visual rescale and the histogram always share one min/max.
func Analyze(ctx context.Context, field *spectral.Field, component string) (*model.HistogramResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values, err := extract(field, component)
	if err != nil {
		return nil, err
	}
	values = spectral.ShiftDC(values, field.Width, field.Height)

	// Pass 1: min/max/mean.
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	sum := 0.0
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += v
	}
	n := float64(len(values))
	mean := sum / n

	// Pass 2: variance, histogram counts and the visual buffer.
	res := &model.HistogramResult{
		Bins:    make([]float64, HistogramBins),
		Min:     minV,
		Max:     maxV,
		Mean:    mean,
		Visual:  make([]byte, len(values)),
		Width:   field.Width,
		Height:  field.Height,
		Backend: field.Backend,
	}
	counts := make([]int, HistogramBins)
	variance := 0.0
	span := maxV - minV
	for i, v := range values {
		d := v - mean
		variance += d * d

		if span > 0 {
			t := (v - minV) / span
			bin := int(t * (HistogramBins - 1))
			if bin < 0 {
				bin = 0
			}
			if bin >= HistogramBins {
				bin = HistogramBins - 1
			}
			counts[bin]++
			res.Visual[i] = byte(math.Round(t * 255))
		} else {
			// Degenerate zero-range input maps to the bottom of the
			// 8-bit range instead of dividing by zero.
			counts[0]++
			res.Visual[i] = 0
		}
	}
	res.StdDev = math.Sqrt(variance / n)

	// Normalize so the mode bin is exactly 1.0.
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount > 0 {
		for i, c := range counts {
			res.Bins[i] = float64(c) / float64(maxCount)
		}
	}
	return res, nil
}

func extract(field *spectral.Field, component string) ([]float64, error) {
	values := make([]float64, field.Len())
	switch component {
	case ComponentMagnitude:
		for i := range values {
			mag := math.Hypot(float64(field.Real[i]), float64(field.Imag[i]))
			values[i] = math.Log1p(mag)
		}
	case ComponentPhase:
		for i := range values {
			values[i] = math.Atan2(float64(field.Imag[i]), float64(field.Real[i]))
		}
	case ComponentReal:
		for i := range values {
			values[i] = float64(field.Real[i])
		}
	case ComponentImag:
		for i := range values {
			values[i] = float64(field.Imag[i])
		}
	default:
		return nil, fmt.Errorf("unknown spectral component %q", component)
	}
	return values, nil
}
