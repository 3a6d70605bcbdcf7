package spectral

// ShiftDC cyclically swaps quadrants of a row-major plane so the
// zero-frequency component moves from the corner to the center. For
// even extents applying it twice restores the input; odd extents do
// not round-trip through a single re-application.
func ShiftDC(values []float64, width, height int) []float64 {
	out := make([]float64, len(values))
	dx := width / 2
	dy := height / 2
	for y := 0; y < height; y++ {
		ty := (y + dy) % height
		for x := 0; x < width; x++ {
			tx := (x + dx) % width
			out[ty*width+tx] = values[y*width+x]
		}
	}
	return out
}
