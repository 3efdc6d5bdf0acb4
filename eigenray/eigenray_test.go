package eigenray

import (
	"math"
	"testing"
)

// quadraticBowl builds a synthetic distance2 stencil from a paraboloid
// centered exactly at the middle sample, so the closed-form offset is zero
// and the taylor expansion should recover the known curvature exactly.
func quadraticBowl(delta [3]float64, a, b, c float64) [3][3][3]float64 {
	var d2 [3][3][3]float64
	for nt := 0; nt < 3; nt++ {
		for nde := 0; nde < 3; nde++ {
			for naz := 0; naz < 3; naz++ {
				t := float64(nt-1) * delta[0]
				de := float64(nde-1) * delta[1]
				az := float64(naz-1) * delta[2]
				d2[nt][nde][naz] = a*t*t + b*de*de + c*az*az
			}
		}
	}
	return d2
}

func TestTaylorCoefficientsRecoversKnownCurvature(t *testing.T) {
	delta := [3]float64{0.1, 1.0, 2.0}
	d2 := quadraticBowl(delta, 100, 200, 50)
	center, gradient, hessian := taylorCoefficients(d2, delta, false)

	if math.Abs(center) > 1e-9 {
		t.Errorf("center: want 0 have %v", center)
	}
	for i, g := range gradient {
		if math.Abs(g) > 1e-6 {
			t.Errorf("gradient[%d]: want 0 have %v", i, g)
		}
	}
	wantDiag := [3]float64{200, 400, 100} // second derivative of a*x^2 is 2a
	for i, w := range wantDiag {
		if math.Abs(hessian[i][i]-w) > 1e-3 {
			t.Errorf("hessian[%d][%d]: want %v have %v", i, i, w, hessian[i][i])
		}
	}
}

func TestComputeOffsetsZeroAtCenterOfSymmetricBowl(t *testing.T) {
	delta := [3]float64{0.1, 1.0, 2.0}
	d2 := quadraticBowl(delta, 100, 200, 50)
	offset, distance := computeOffsets(d2, delta, false)
	for i, o := range offset {
		if math.Abs(o) > 1e-6 {
			t.Errorf("offset[%d]: want 0 have %v", i, o)
		}
	}
	for i, d := range distance {
		if math.Abs(d) > 1e-6 {
			t.Errorf("distance[%d]: want 0 have %v", i, d)
		}
	}
}

func TestComputeOffsetsClipsToDeltaBounds(t *testing.T) {
	delta := [3]float64{0.1, 1.0, 2.0}
	// A bowl whose minimum sits five grid spacings from the central sample
	// along every axis, well outside the stencil, still must not report an
	// offset larger than one grid spacing.
	var d2 [3][3][3]float64
	for nt := 0; nt < 3; nt++ {
		for nde := 0; nde < 3; nde++ {
			for naz := 0; naz < 3; naz++ {
				dt := float64(nt-6) * delta[0]
				dde := float64(nde-6) * delta[1]
				daz := float64(naz-6) * delta[2]
				d2[nt][nde][naz] = 100*dt*dt + 200*dde*dde + 50*daz*daz
			}
		}
	}
	offset, _ := computeOffsets(d2, delta, false)
	for i, o := range offset {
		if math.Abs(o) > delta[i]+1e-9 {
			t.Errorf("offset[%d]=%v exceeds clip bound %v", i, o, delta[i])
		}
	}
}
