package oceanfixture

import (
	"math"

	"github.com/ctessum/sparse"

	"github.com/oceanacoustics/waveq3d/geo"
)

// GriddedProfile is a sound-speed field sampled on a regular
// (depth, latitude, longitude) grid and trilinearly interpolated, standing
// in for a netCDF-derived profile. Speed is stored in a sparse.DenseArray rather than a plain
// slice-of-slices so the same storage shape as the rest of the corpus's
// gridded-field code can be reused.
type GriddedProfile struct {
	Depths     []float64 // meters, ascending, positive down
	Lats, Lons []float64 // degrees, ascending
	speed      *sparse.DenseArray
}

// NewGriddedProfile builds a GriddedProfile backed by a dense grid sized
// (len(depths), len(lats), len(lons)). Callers fill it in with Set before
// using it as an ocean.SoundSpeed.
func NewGriddedProfile(depths, lats, lons []float64) *GriddedProfile {
	return &GriddedProfile{
		Depths: depths, Lats: lats, Lons: lons,
		speed: sparse.ZerosDense(len(depths), len(lats), len(lons)),
	}
}

// Set stores the sound speed at grid node (depthIdx, latIdx, lonIdx).
func (g *GriddedProfile) Set(speed float64, depthIdx, latIdx, lonIdx int) {
	g.speed.Set(speed, depthIdx, latIdx, lonIdx)
}

func locate(axis []float64, v float64) (lo int, frac float64) {
	if v <= axis[0] {
		return 0, 0
	}
	if v >= axis[len(axis)-1] {
		return len(axis) - 2, 1
	}
	for i := 0; i < len(axis)-1; i++ {
		if v >= axis[i] && v <= axis[i+1] {
			return i, (v - axis[i]) / (axis[i+1] - axis[i])
		}
	}
	return len(axis) - 2, 1
}

func (g *GriddedProfile) sample(depth, lat, lon float64) float64 {
	di, dt := locate(g.Depths, depth)
	li, lt := locate(g.Lats, lat)
	oi, ot := locate(g.Lons, lon)

	clamp := func(i, n int) int {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	at := func(d, l, o int) float64 {
		return g.speed.Get(clamp(d, len(g.Depths)), clamp(l, len(g.Lats)), clamp(o, len(g.Lons)))
	}

	c000, c100 := at(di, li, oi), at(di+1, li, oi)
	c010, c110 := at(di, li+1, oi), at(di+1, li+1, oi)
	c001, c101 := at(di, li, oi+1), at(di+1, li, oi+1)
	c011, c111 := at(di, li+1, oi+1), at(di+1, li+1, oi+1)

	c00 := c000*(1-dt) + c100*dt
	c10 := c010*(1-dt) + c110*dt
	c01 := c001*(1-dt) + c101*dt
	c11 := c011*(1-dt) + c111*dt

	c0 := c00*(1-lt) + c10*lt
	c1 := c01*(1-lt) + c11*lt

	return c0*(1-ot) + c1*ot
}

// Speed implements ocean.SoundSpeed using trilinear interpolation and a
// centered finite difference on depth for the gradient (the horizontal
// gradient is left at zero; range-dependent grids are a documented
// non-goal of this fixture).
func (g *GriddedProfile) Speed(positions []geo.Point) ([]float64, []geo.Vector) {
	speed := make([]float64, len(positions))
	grad := make([]geo.Vector, len(positions))
	const dz = 1.0
	for i, p := range positions {
		lat, lon, alt := p.Geodetic()
		depth := -alt
		speed[i] = g.sample(depth, lat, lon)
		up := g.sample(math.Max(0, depth-dz), lat, lon)
		down := g.sample(depth+dz, lat, lon)
		dcdz := (down - up) / (2 * dz)
		grad[i] = geo.Vector{Rho: -dcdz}
	}
	return speed, grad
}

// Attenuation implements ocean.SoundSpeed.
func (g *GriddedProfile) Attenuation(position geo.Point, freqs []float64, distance float64) []float64 {
	return attenuationDB(freqs, distance, 0.01)
}
