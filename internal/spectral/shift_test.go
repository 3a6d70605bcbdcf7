package spectral

import "testing"

func TestShiftDCMovesOrigin(t *testing.T) {
	// The DC term at (0,0) lands at the field center.
	in := make([]float64, 16)
	in[0] = 1

	out := ShiftDC(in, 4, 4)
	if out[2*4+2] != 1 {
		t.Errorf("expected DC term at (2,2), got %v", out)
	}
	if out[0] != 0 {
		t.Error("origin should be cleared after the shift")
	}
}

func TestShiftDCEvenDoubleApplyIsIdentity(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

	out := ShiftDC(ShiftDC(in, 4, 4), 4, 4)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("index %d = %g, want %g", i, out[i], in[i])
		}
	}
}

func TestShiftDCOddExtent(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}

	out := ShiftDC(in, 3, 3)
	// (0,0) moves to (1,1) for a 3x3 plane.
	if out[1*3+1] != 0 {
		t.Errorf("expected origin value at center, got %v", out)
	}
	// Double-apply is not the identity on odd extents.
	twice := ShiftDC(out, 3, 3)
	same := true
	for i := range in {
		if twice[i] != in[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("double shift should not be the identity on a 3x3 plane")
	}
}
