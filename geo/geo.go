// Package geo implements spherical-earth position and direction primitives
// for the wavefront propagator. Every geometric quantity in the propagator
// lives in (ρ, θ, φ): radius from the earth center, colatitude, and
// longitude, all in SI units (meters, radians). Conversions to and from
// geodetic (latitude, longitude, altitude) stay at this boundary so the
// rest of the engine never has to think about degrees.
package geo

import "math"

// EarthRadius is the mean earth radius used to place the reference sphere
// that (ρ, θ, φ) coordinates are measured from.
const EarthRadius = 6378101.030201 // meters, WGS84-ish mean radius at 45 deg lat

// Point is a position in spherical earth coordinates.
type Point struct {
	Rho   float64 // radius from earth center, meters
	Theta float64 // colatitude, radians (0 at north pole)
	Phi   float64 // longitude, radians
}

// Vector is a direction or slowness vector, carried as the (ρ, θ, φ)
// components of d(position)/dt. A "slowness" vector is this divided by
// local sound speed, which is what makes the ray ODEs simple.
type Vector struct {
	Rho   float64
	Theta float64
	Phi   float64
}

// FromGeodetic builds a Point from latitude/longitude in degrees and
// altitude in meters (positive up).
func FromGeodetic(latDeg, lonDeg, altitude float64) Point {
	return Point{
		Rho:   EarthRadius + altitude,
		Theta: math.Pi/2 - latDeg*math.Pi/180,
		Phi:   lonDeg * math.Pi / 180,
	}
}

// Geodetic decomposes a Point back into latitude, longitude (degrees) and
// altitude (meters).
func (p Point) Geodetic() (latDeg, lonDeg, altitude float64) {
	latDeg = 90 - p.Theta*180/math.Pi
	lonDeg = p.Phi * 180 / math.Pi
	altitude = p.Rho - EarthRadius
	return
}

// Altitude returns height above the reference sphere, meters positive up.
func (p Point) Altitude() float64 { return p.Rho - EarthRadius }

// SinTheta returns sin(Theta), for callers to cache and reuse in repeated
// chord distance calculations against the same fixed point (e.g. a target).
func (p Point) SinTheta() float64 { return math.Sin(p.Theta) }

// ChordDistance2 returns the squared straight-line (chord) distance between
// p and q using the law of cosines in spherical coordinates. sinThetaQ is
// sin(q.Theta), passed in so repeated calls against a fixed target can
// reuse the cached value instead of recomputing a sine every time (mirrors
// the "cached sin(colatitude) per target" requirement of the frame update
// step).
func ChordDistance2(p, q Point, sinThetaQ float64) float64 {
	sinThetaP := math.Sin(p.Theta)
	cosGamma := math.Cos(p.Theta)*math.Cos(q.Theta) +
		sinThetaP*sinThetaQ*math.Cos(p.Phi-q.Phi)
	return p.Rho*p.Rho + q.Rho*q.Rho - 2*p.Rho*q.Rho*cosGamma
}

// GreatCircleDistance returns the geodesic (along the reference sphere,
// using the mean of the two radii) distance between p and q, used by the
// isovelocity great-circle testable property in spec.md.
func GreatCircleDistance(p, q Point) float64 {
	sinThetaP, sinThetaQ := math.Sin(p.Theta), math.Sin(q.Theta)
	cosGamma := math.Cos(p.Theta)*math.Cos(q.Theta) + sinThetaP*sinThetaQ*math.Cos(p.Phi-q.Phi)
	cosGamma = math.Max(-1, math.Min(1, cosGamma))
	gamma := math.Acos(cosGamma)
	r := (p.Rho + q.Rho) / 2
	return r * gamma
}

// UnitDirection builds a unit-speed direction vector in (ρ, θ, φ) rate
// terms from a depression/elevation angle and an azimuth, both in degrees,
// at the given position. DE is positive up; AZ is clockwise from true
// north. The θ and φ components are angular rates (the arclength rates
// divided by ρ and ρ·sinθ), so that multiplying by the local sound speed gives
// d(position)/dt directly.
func UnitDirection(p Point, deDeg, azDeg float64) Vector {
	de := deDeg * math.Pi / 180
	az := azDeg * math.Pi / 180
	sinDE, cosDE := math.Sin(de), math.Cos(de)
	sinAZ, cosAZ := math.Sin(az), math.Cos(az)

	sinTheta := math.Sin(p.Theta)
	if math.Abs(sinTheta) < 1e-12 {
		sinTheta = 1e-12 // avoid division by zero at the poles
	}
	return Vector{
		Rho:   sinDE,
		Theta: -cosDE * cosAZ / p.Rho,
		Phi:   cosDE * sinAZ / (p.Rho * sinTheta),
	}
}

// AngleFromUnitDirection is the inverse of UnitDirection: given a position
// and a unit-speed direction vector (e.g. a slowness vector scaled back up
// by the local sound speed), it recovers the depression/elevation and
// azimuth angles, in degrees, that would have produced it. Used by the
// eigenray extractor to turn a ray's local direction into an arrival
// angle at a target.
func AngleFromUnitDirection(p Point, v Vector) (deDeg, azDeg float64) {
	rho := math.Max(-1, math.Min(1, v.Rho))
	de := math.Asin(rho)
	sinTheta := math.Sin(p.Theta)
	cosDEcosAZ := -v.Theta * p.Rho
	cosDEsinAZ := v.Phi * p.Rho * sinTheta
	az := math.Atan2(cosDEsinAZ, cosDEcosAZ)
	if az < 0 {
		az += 2 * math.Pi
	}
	return de * 180 / math.Pi, az * 180 / math.Pi
}

// Add returns the component-wise sum of two vectors.
func (v Vector) Add(w Vector) Vector {
	return Vector{v.Rho + w.Rho, v.Theta + w.Theta, v.Phi + w.Phi}
}

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.Rho * s, v.Theta * s, v.Phi * s}
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector {
	return Vector{v.Rho - w.Rho, v.Theta - w.Theta, v.Phi - w.Phi}
}

// AddPoint advances a Point by a Vector interpreted as a displacement in
// (ρ, θ, φ) space (used by the ODE integrator, which works directly in
// these coordinates rather than rectangular ones).
func (p Point) AddPoint(v Vector) Point {
	return Point{p.Rho + v.Rho, p.Theta + v.Theta, p.Phi + v.Phi}
}

// Norm returns the Euclidean norm of the vector's three components, used
// by the reflection engine to renormalize a mirrored slowness vector.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Rho*v.Rho + v.Theta*v.Theta + v.Phi*v.Phi)
}

// Dot returns the dot product of two vectors treated as plain 3-tuples.
// This is used by the reflection engine against boundary normals that are
// themselves expressed in the same local (ρ, θ, φ) basis.
func Dot(v, w Vector) float64 {
	return v.Rho*w.Rho + v.Theta*w.Theta + v.Phi*w.Phi
}

// EastNorth decomposes an azimuth in degrees into unit east/north
// components, used to average azimuth angles as vectors so that 359° and
// 1° average to 0° rather than 180°.
func EastNorth(azDeg float64) (east, north float64) {
	az := azDeg * math.Pi / 180
	return math.Sin(az), math.Cos(az)
}

// AzimuthFromEastNorth is the inverse of EastNorth.
func AzimuthFromEastNorth(east, north float64) float64 {
	az := math.Atan2(east, north) * 180 / math.Pi
	if az < 0 {
		az += 360
	}
	return az
}
