// Package wavefront implements a single (DE × AZ) grid of ray state — a
// "wavefront frame" — plus the RK3/AB3 ODE integrator that advances one
// frame to the next. A frame is dense and pre-allocated; updating it
// in place is what keeps the propagator's hot loop allocation-free.
package wavefront

import (
	"math"

	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
)

// Frame holds the state of every ray in a (DE × AZ) fan at one instant in
// time. All per-ray fields are flattened row-major over (de, az); use
// Index to compute the offset.
type Frame struct {
	NDE, NAZ int
	NFreq    int
	Time     float64

	Position []geo.Point  // position in spherical earth coordinates
	Slowness []geo.Vector // direction / local sound speed

	PosRate   []geo.Vector // d(Position)/dt, cached for AB3
	SlowRate  []geo.Vector // d(Slowness)/dt, cached for AB3
	SoundSpd  []float64
	SoundGrad []geo.Vector

	// Attenuation[i] and Phase[i] are length-NFreq, per-frequency
	// path-integrated quantities.
	Attenuation [][]float64
	Phase       [][]float64

	Surface []int
	Bottom  []int
	Caustic []int
	Upper   []int
	Lower   []int

	OnEdge []bool

	// Distance2[i] is length len(Targets); squared chord distance from ray
	// i to each target. nil when no targets are attached.
	Distance2 [][]float64
}

// Index returns the flat offset of ray (de, az).
func (f *Frame) Index(de, az int) int { return de*f.NAZ + az }

// NewFrame allocates a frame sized (nde × naz) with nfreq frequencies and
// ntargets attached targets (0 if none).
func NewFrame(nde, naz, nfreq, ntargets int) *Frame {
	n := nde * naz
	f := &Frame{
		NDE: nde, NAZ: naz, NFreq: nfreq,
		Position:    make([]geo.Point, n),
		Slowness:    make([]geo.Vector, n),
		PosRate:     make([]geo.Vector, n),
		SlowRate:    make([]geo.Vector, n),
		SoundSpd:    make([]float64, n),
		SoundGrad:   make([]geo.Vector, n),
		Attenuation: make([][]float64, n),
		Phase:       make([][]float64, n),
		Surface:     make([]int, n),
		Bottom:      make([]int, n),
		Caustic:     make([]int, n),
		Upper:       make([]int, n),
		Lower:       make([]int, n),
		OnEdge:      make([]bool, n),
	}
	for i := range f.Attenuation {
		f.Attenuation[i] = make([]float64, nfreq)
		f.Phase[i] = make([]float64, nfreq)
	}
	if ntargets > 0 {
		f.Distance2 = make([][]float64, n)
		for i := range f.Distance2 {
			f.Distance2[i] = make([]float64, ntargets)
		}
	}
	return f
}

// InitWave seeds the frame's Position/Slowness arrays from a source
// position and depression/elevation × azimuth angle sets (degrees). Slowness
// is stored as a plain unit direction until NormalizeInitialSlowness
// divides it by local sound speed; the caller must call that once the
// sound-speed model is available, before the first Update.
func (f *Frame) InitWave(source geo.Point, de, az []float64) {
	for d := 0; d < f.NDE; d++ {
		for a := 0; a < f.NAZ; a++ {
			i := f.Index(d, a)
			f.Position[i] = source
			f.Slowness[i] = geo.UnitDirection(source, de[d], az[a])
		}
	}
}

// NormalizeInitialSlowness divides every ray's (still unit-direction)
// Slowness by the corresponding local sound speed, turning it into a true
// slowness vector. speed must be len(f.Position) and ordered the same way
// InitWave populated Position (i.e. it is env.Speed(f.Position)).
func (f *Frame) NormalizeInitialSlowness(speed []float64) {
	for i, c := range speed {
		f.Slowness[i] = f.Slowness[i].Scale(1 / c)
	}
}

// Update recomputes every field that is derived from Position and
// Slowness: sound speed and gradient, the ODE right-hand sides cached in
// PosRate/SlowRate, and (if targets are attached) squared distance to
// every target. Invariant: a frame must not be read by another subsystem
// until Update has been called since the last Position/Slowness change.
func (f *Frame) Update(env ocean.SoundSpeed, targets []geo.Point, targetSinTheta []float64) {
	speed, grad := env.Speed(f.Position)
	copy(f.SoundSpd, speed)
	copy(f.SoundGrad, grad)

	for i := range f.Position {
		c := f.SoundSpd[i]
		c2 := c * c
		// Ray equations in the spherical slowness formulation:
		//   d(position)/dt  =  c^2 * slowness
		//   d(slowness)/dt  = -grad(c) / c
		f.PosRate[i] = f.Slowness[i].Scale(c2)
		f.SlowRate[i] = f.SoundGrad[i].Scale(-1.0 / c)
	}

	if len(targets) > 0 && f.Distance2 != nil {
		for i, p := range f.Position {
			row := f.Distance2[i]
			for t, tgt := range targets {
				row[t] = geo.ChordDistance2(p, tgt, targetSinTheta[t])
			}
		}
	}
}

// NormalizeSlowness rescales the slowness vector at ray i so that its
// magnitude is exactly 1/c, undoing any drift introduced by reflection
// mirroring. c is the local sound speed.
func (f *Frame) NormalizeSlowness(i int, c float64) {
	v := f.Slowness[i]
	n := v.Norm() * c
	if n == 0 || math.IsNaN(n) {
		return
	}
	f.Slowness[i] = v.Scale(1 / n)
}

// CopyRayFrom overwrites ray i's full state with ray j's state from
// another frame (used when reinitializing the 1-ray history queue after a
// reflection).
func (f *Frame) CopyRayFrom(i int, src *Frame, j int) {
	f.Position[i] = src.Position[j]
	f.Slowness[i] = src.Slowness[j]
	f.PosRate[i] = src.PosRate[j]
	f.SlowRate[i] = src.SlowRate[j]
	f.SoundSpd[i] = src.SoundSpd[j]
	f.SoundGrad[i] = src.SoundGrad[j]
	if f.Distance2 != nil && src.Distance2 != nil {
		copy(f.Distance2[i], src.Distance2[j])
	}
}
