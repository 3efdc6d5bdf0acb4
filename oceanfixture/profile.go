package oceanfixture

import (
	"math"

	"github.com/oceanacoustics/waveq3d/geo"
)

// attenuationDB is a simple frequency-squared volume absorption law (dB per
// meter proportional to f^2), adequate for the test fixtures; real
// absorption models (Thorp, Francois-Garrison) belong to an application's
// own ocean.SoundSpeed implementation.
func attenuationDB(freqs []float64, distance float64, coeff float64) []float64 {
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		khz := f / 1000
		out[i] = coeff * khz * khz * distance / 1000
	}
	return out
}

// Isovelocity is a constant sound-speed profile: zero gradient everywhere,
// used for the straight-ray testable properties (three-ray basic case,
// great-circle range checks).
type Isovelocity struct {
	Speed float64 // m/s
}

// Speed implements ocean.SoundSpeed.
func (p Isovelocity) Speed(positions []geo.Point) ([]float64, []geo.Vector) {
	speed := make([]float64, len(positions))
	grad := make([]geo.Vector, len(positions))
	for i := range positions {
		speed[i] = p.Speed
	}
	return speed, grad
}

// Attenuation implements ocean.SoundSpeed.
func (p Isovelocity) Attenuation(position geo.Point, freqs []float64, distance float64) []float64 {
	return attenuationDB(freqs, distance, 0.01)
}

// Munk is the canonical Munk canonical sound-speed profile, a SOFAR-channel
// model with an exponential approach to a minimum speed at a reference
// depth:
//
//	c(z) = c1 * (1 + eps*(zbar - 1 + exp(-zbar)))
//	zbar = 2*(z - zc) / B
//
// where z is depth (positive down), zc is the channel axis depth, B is the
// scale depth, and eps is a small perturbation coefficient.
type Munk struct {
	AxisDepth  float64 // zc, meters
	AxisSpeed  float64 // c1, m/s
	ScaleDepth float64 // B, meters
	Epsilon    float64 // dimensionless, typically 0.00737
}

// Speed implements ocean.SoundSpeed.
func (p Munk) Speed(positions []geo.Point) ([]float64, []geo.Vector) {
	speed := make([]float64, len(positions))
	grad := make([]geo.Vector, len(positions))
	for i, pos := range positions {
		z := -pos.Altitude() // depth, positive down
		zbar := 2 * (z - p.AxisDepth) / p.ScaleDepth
		speed[i] = p.AxisSpeed * (1 + p.Epsilon*(zbar-1+math.Exp(-zbar)))

		dcdz := p.AxisSpeed * p.Epsilon * (2 / p.ScaleDepth) * (1 - math.Exp(-zbar))
		// d(altitude)/d(rho) = -1, so d(speed)/d(rho) = -dcdz
		grad[i] = geo.Vector{Rho: -dcdz, Theta: 0, Phi: 0}
	}
	return speed, grad
}

// Attenuation implements ocean.SoundSpeed.
func (p Munk) Attenuation(position geo.Point, freqs []float64, distance float64) []float64 {
	return attenuationDB(freqs, distance, 0.01)
}

// N2Linear is a profile whose squared index of refraction (c0/c)^2 varies
// linearly with depth, a standard refraction test case because it has a
// closed-form circular ray solution.
type N2Linear struct {
	SurfaceSpeed float64 // c0, m/s at z=0
	Gradient     float64 // d(n^2)/dz, 1/m, typically negative (speed increases with depth)
}

// Speed implements ocean.SoundSpeed.
func (p N2Linear) Speed(positions []geo.Point) ([]float64, []geo.Vector) {
	speed := make([]float64, len(positions))
	grad := make([]geo.Vector, len(positions))
	for i, pos := range positions {
		z := -pos.Altitude()
		n2 := 1 + p.Gradient*z
		c := p.SurfaceSpeed / math.Sqrt(math.Max(n2, 1e-6))
		speed[i] = c

		dn2dz := p.Gradient
		dcdz := -0.5 * p.SurfaceSpeed * dn2dz / math.Pow(math.Max(n2, 1e-6), 1.5)
		grad[i] = geo.Vector{Rho: -dcdz, Theta: 0, Phi: 0}
	}
	return speed, grad
}

// Attenuation implements ocean.SoundSpeed.
func (p N2Linear) Attenuation(position geo.Point, freqs []float64, distance float64) []float64 {
	return attenuationDB(freqs, distance, 0.01)
}
