// Package ocean defines the pure-query interfaces the wavefront propagator
// consumes from its environment. Nothing in this package loads data files,
// interpolates grids, or knows about netCDF; those concerns belong to the
// oceanfixture package (test/demo fixtures) or to an application's own data
// layer. The propagator only ever calls these interfaces.
package ocean

import "github.com/oceanacoustics/waveq3d/geo"

// SoundSpeed answers sound-speed queries for an arbitrary batch of
// positions. Implementations are expected to be safe for concurrent use by
// multiple Queue instances, since the ocean model may be shared read-only.
type SoundSpeed interface {
	// Speed returns sound speed (m/s) and its spatial gradient (s^-1, in
	// (ρ, θ, φ) components matching geo.Vector) at each position.
	Speed(positions []geo.Point) (speed []float64, gradient []geo.Vector)

	// Attenuation returns a volume-absorption loss (dB) for a single
	// position, frequency set, and path distance (meters).
	Attenuation(position geo.Point, frequencies []float64, distance float64) []float64
}

// Boundary answers height and reflection-loss queries for a surface or
// bottom boundary. The same interface shape serves both boundaries, per
// spec.
type Boundary interface {
	// Height returns the radius (meters, in the same ρ frame as geo.Point)
	// of the boundary directly below/above the given horizontal position,
	// and the boundary's outward unit normal there (expressed as a
	// geo.Vector in local (ρ, θ, φ) rate components, as the reflection
	// engine expects).
	Height(position geo.Point) (radius float64, normal geo.Vector)

	// ReflectLoss returns, for the given position, frequency set and
	// grazing angle (radians, always positive), the per-frequency
	// amplitude attenuation (dB) and phase shift (radians).
	ReflectLoss(position geo.Point, frequencies []float64, grazingAngle float64) (amplitudeDB, phaseRad []float64)
}

// VolumeLayerType distinguishes the direction a ray crosses a volume
// scattering layer from.
type VolumeLayerType int

const (
	// FromAbove means the ray was heading downward through the layer.
	FromAbove VolumeLayerType = iota
	// FromBelow means the ray was heading upward through the layer.
	FromBelow
)

// VolumeLayer is an optional volume scattering layer (e.g. a deep
// scattering layer) that the reflection sweep checks rays against.
type VolumeLayer interface {
	// Depth returns the layer's depth (meters, positive down) below the
	// given horizontal position.
	Depth(position geo.Point) float64
}

// Model bundles the three environmental collaborators a Queue needs. It is
// borrowed for the lifetime of the Queue and is never mutated by it.
type Model struct {
	Profile SoundSpeed
	Surface Boundary
	Bottom  Boundary
	Volumes []VolumeLayer
}
