// Package beam expands phased-array descriptors into radiating point
// elements and computes interference-intensity fields by phasor
// superposition.
package beam

import (
	"math"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
)

// Element is a single radiating point source.
type Element struct {
	X           float64 // meters
	Y           float64 // meters
	PhaseOffset float64 // radians
	Amplitude   float64
	K           float64 // wave number of the owning descriptor
}

// Wavelength derives the wavelength from descriptor frequency and the
// medium's propagation speed.
func Wavelength(frequency, speed float64) float64 {
	return speed / frequency
}

// ExpandElements places a descriptor's elements in physical space.
// Geometry is a two-case tagged variant: a line of evenly pitched
// elements, or an arc of the descriptor's curvature radius with the
// pitch applied as arc length. Beam steering is a linear phase
// progression across the aperture.
func ExpandElements(d *model.ArrayDescriptor, medium model.Medium) []Element {
	n := d.ElementCount
	k := 2 * math.Pi / Wavelength(d.Frequency, medium.Speed)
	// Per-element steering delay relative to the aperture center.
	steer := -k * d.Pitch * math.Sin(d.SteeringAngle)

	elements := make([]Element, n)
	for i := 0; i < n; i++ {
		// Signed index centered on the aperture midpoint.
		ci := float64(i) - float64(n-1)/2

		amp := 1.0
		if i < len(d.Amplitudes) {
			amp = d.Amplitudes[i]
		}
		el := Element{
			PhaseOffset: steer * ci,
			Amplitude:   amp,
			K:           k,
		}
		switch d.Geometry {
		case "curved":
			dtheta := d.Pitch / d.CurvatureRadius
			theta := ci * dtheta
			el.X = d.X + d.CurvatureRadius*math.Sin(theta)
			el.Y = d.Y + d.CurvatureRadius*(1-math.Cos(theta))
		default: // linear
			el.X = d.X + ci*d.Pitch
			el.Y = d.Y
		}
		elements[i] = el
	}
	return elements
}
