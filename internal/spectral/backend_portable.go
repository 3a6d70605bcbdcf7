package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
)

// portableBackend delegates to the pure-Go go-dsp transform. It is the
// fallback whenever the native backend is unavailable or the grid
// exceeds the native element cap.
type portableBackend struct{}

func newPortableBackend() Backend {
	return &portableBackend{}
}

func (b *portableBackend) Name() string { return BackendPortable }

func (b *portableBackend) FFT2D(data []complex128, width, height int) error {
	return b.transform(data, width, height, false)
}

func (b *portableBackend) IFFT2D(data []complex128, width, height int) error {
	return b.transform(data, width, height, true)
}

func (b *portableBackend) transform(data []complex128, width, height int, inverse bool) error {
	if len(data) != width*height {
		return fmt.Errorf("portable backend: %d samples for %dx%d grid", len(data), width, height)
	}

	grid := make([][]complex128, height)
	for y := range grid {
		grid[y] = data[y*width : (y+1)*width]
	}

	var out [][]complex128
	if inverse {
		out = fft.IFFT2(grid) // go-dsp normalizes its inverse
	} else {
		out = fft.FFT2(grid)
	}

	for y := range out {
		copy(data[y*width:(y+1)*width], out[y])
	}
	return nil
}
