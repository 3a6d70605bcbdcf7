// Package spectral implements the 2D discrete Fourier transform engine
// shared by the mixing and analysis paths. The transform itself is
// delegated to one of two interchangeable backends.
package spectral

// Field is a complex-valued frequency-domain image. Width and Height
// are the padded (power-of-two) extents the transform ran on; OrigWidth
// and OrigHeight remember the pre-padding extent so the inverse path
// can crop back. A Field is owned by the job that created it.
type Field struct {
	Width      int
	Height     int
	OrigWidth  int
	OrigHeight int
	Real       []float32
	Imag       []float32
	// Backend names the implementation that served the transform.
	Backend string
}

// Len returns the number of complex samples.
func (f *Field) Len() int { return f.Width * f.Height }

func (f *Field) complexSamples() []complex128 {
	data := make([]complex128, f.Len())
	for i := range data {
		data[i] = complex(float64(f.Real[i]), float64(f.Imag[i]))
	}
	return data
}

func fieldFromComplex(data []complex128, w, h, origW, origH int, backend string) *Field {
	f := &Field{
		Width:      w,
		Height:     h,
		OrigWidth:  origW,
		OrigHeight: origH,
		Real:       make([]float32, len(data)),
		Imag:       make([]float32, len(data)),
		Backend:    backend,
	}
	for i, c := range data {
		f.Real[i] = float32(real(c))
		f.Imag[i] = float32(imag(c))
	}
	return f
}

// NextPow2 returns the transform extent for a requested axis length:
// the next power of two, with degenerate lengths <=1 padded to 2.
func NextPow2(n int) int {
	if n <= 1 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
