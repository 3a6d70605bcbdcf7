package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// nativeBackend runs the separable transform through gonum's optimized
// complex FFT, one pass across rows and one across columns.
type nativeBackend struct{}

func newNativeBackend() (Backend, error) {
	return &nativeBackend{}, nil
}

func (b *nativeBackend) Name() string { return BackendNative }

func (b *nativeBackend) FFT2D(data []complex128, width, height int) error {
	return b.transform(data, width, height, false)
}

func (b *nativeBackend) IFFT2D(data []complex128, width, height int) error {
	return b.transform(data, width, height, true)
}

func (b *nativeBackend) transform(data []complex128, width, height int, inverse bool) error {
	if len(data) != width*height {
		return fmt.Errorf("native backend: %d samples for %dx%d grid", len(data), width, height)
	}

	rowFFT := fourier.NewCmplxFFT(width)
	row := make([]complex128, width)
	for y := 0; y < height; y++ {
		copy(row, data[y*width:(y+1)*width])
		apply1D(rowFFT, data[y*width:(y+1)*width], row, inverse)
	}

	colFFT := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	out := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*width+x]
		}
		apply1D(colFFT, out, col, inverse)
		for y := 0; y < height; y++ {
			data[y*width+x] = out[y]
		}
	}
	return nil
}

// apply1D writes the transform of src into dst. gonum's Sequence is
// unnormalized, so the inverse divides by the length here to keep the
// backend contract (normalized inverse).
func apply1D(fft *fourier.CmplxFFT, dst, src []complex128, inverse bool) {
	if inverse {
		fft.Sequence(dst, src)
		n := complex(float64(len(src)), 0)
		for i := range dst {
			dst[i] /= n
		}
		return
	}
	fft.Coefficients(dst, src)
}
