// Package oceanfixture provides test and demonstration implementations of
// the ocean package's interfaces: flat and gridded boundaries, and a
// handful of textbook sound-speed profiles.
package oceanfixture

import (
	"math"

	"github.com/oceanacoustics/waveq3d/geo"
)

// FlatBoundary is a boundary at a constant depth (or altitude, if depth is
// negative) below the reference sphere, with a single constant reflection
// loss and phase shift applied at every grazing angle and frequency.
type FlatBoundary struct {
	Depth        float64 // meters, positive down from the reference sphere
	LossDB       float64
	PhaseShift   float64
}

// Height implements ocean.Boundary.
func (b FlatBoundary) Height(p geo.Point) (float64, geo.Vector) {
	return geo.EarthRadius - b.Depth, geo.Vector{Rho: 1, Theta: 0, Phi: 0}
}

// ReflectLoss implements ocean.Boundary.
func (b FlatBoundary) ReflectLoss(p geo.Point, freqs []float64, grazing float64) ([]float64, []float64) {
	amp := make([]float64, len(freqs))
	ph := make([]float64, len(freqs))
	for i := range freqs {
		amp[i] = b.LossDB
		ph[i] = b.PhaseShift
	}
	return amp, ph
}

// CatenaryBottom is a bottom shaped like a catenary channel: depth
// decreases toward a minimum at RefLatDeg/RefLonDeg and increases with
// great-circle distance from it, producing the classic bowl-shaped SOFAR
// duct bathymetry used in the catenary test scenario.
type CatenaryBottom struct {
	RefLatDeg, RefLonDeg float64
	MinDepth             float64 // meters, at the reference point
	Scale                float64 // meters, horizontal distance scale
	LossDB               float64
}

// Height implements ocean.Boundary.
func (c CatenaryBottom) Height(p geo.Point) (float64, geo.Vector) {
	ref := geo.FromGeodetic(c.RefLatDeg, c.RefLonDeg, 0)
	r := geo.GreatCircleDistance(p, ref)
	depth := c.MinDepth * math.Cosh(r/c.Scale)
	return geo.EarthRadius - depth, geo.Vector{Rho: 1, Theta: 0, Phi: 0}
}

// ReflectLoss implements ocean.Boundary.
func (c CatenaryBottom) ReflectLoss(p geo.Point, freqs []float64, grazing float64) ([]float64, []float64) {
	amp := make([]float64, len(freqs))
	ph := make([]float64, len(freqs))
	for i := range freqs {
		amp[i] = c.LossDB
	}
	return amp, ph
}
