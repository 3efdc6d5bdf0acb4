package waveq3d

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
	"github.com/oceanacoustics/waveq3d/wavefront"
)

// tooShallow is the altitude (meters, negative=under water) above which
// bottom slope is ignored and the bottom normal is forced horizontal, to keep
// a ray in very shallow water from refracting onto dry land.
const tooShallow = -1e-4

// reflectionEngine detects and processes boundary collisions for one
// Queue step. It mutates curr/next/prev/past in place; callers own the
// frames and must call Update on every frame this engine touches.
type reflectionEngine struct {
	env      ocean.Model
	timeStep float64
	freqs    []float64

	volumeListeners []VolumeScatteringListener

	log    *logrus.Entry // nil-safe; diagnostics only
	strict bool          // panic instead of clamp on instability
}

// clampTimeWater enforces the integrator's 0<=dt<=h invariant on the
// fractional time-to-impact computed by bottomReflection/surfaceReflection.
// A healthy boundary model never violates it; seeing dt outside [0,h] means
// the Taylor-refined collision time back- or over-shot the step, which can
// happen at a grazing, near-tangent boundary crossing. Per spec this is
// fatal in a debug run (r.strict) and clamped-with-a-log-line otherwise.
func (r *reflectionEngine) clampTimeWater(de, az int, dt float64) float64 {
	clamped := dt
	if clamped < 0 {
		clamped = 0
	} else if clamped > r.timeStep {
		clamped = r.timeStep
	}
	if clamped == dt {
		return dt
	}

	err := &InstabilityError{DE: de, AZ: az, Computed: dt, Clamped: clamped}
	if r.strict {
		panic(err)
	}
	if r.log != nil {
		r.log.WithFields(logrus.Fields{"de": de, "az": az, "dt": dt, "clamped": clamped}).Warn(err.Error())
	}
	return clamped
}

// Sweep looks at where next would land each ray (the frame about to roll
// into curr) and reflects any ray that crossed a boundary this step. A
// reflected ray's full (past, prev, curr, next) history is rebuilt in
// place by reflectionEngine.reinit, so surface and bottom reflections in
// the same step are handled by re-testing after each one. Every ray is
// also checked against any registered volume scattering layer, regardless
// of whether it reflected off the surface or bottom this step.
func (r *reflectionEngine) Sweep(past, prev, curr, next *wavefront.Frame) int {
	n := 0
	for de := 0; de < curr.NDE; de++ {
		for az := 0; az < curr.NAZ; az++ {
			r.checkVolumes(prev, curr, next, de, az)
			if r.checkSurface(past, prev, curr, next, de, az) {
				n++
				continue
			}
			if r.checkBottom(past, prev, curr, next, de, az) {
				n++
			}
		}
	}
	return n
}

// checkVolumes compares ray (de, az)'s radius at curr and next against
// every registered volume layer's height and reports a crossing to every
// registered VolumeScatteringListener. It mirrors
// reflection_model.cc/wave_queue.h's detect_volume_scattering /
// collide_from_above / collide_from_below, using the same
// collisionLocation Taylor refinement bottom/surface reflection use to
// locate the crossing rather than duplicating bottom_reflection's full
// boundary-normal/grazing-angle machinery for a layer that has no solid
// boundary to reflect off of.
func (r *reflectionEngine) checkVolumes(prev, curr, next *wavefront.Frame, de, az int) {
	if len(r.env.Volumes) == 0 || len(r.volumeListeners) == 0 {
		return
	}
	i := curr.Index(de, az)
	currRho := curr.Position[i].Rho
	nextRho := next.Position[i].Rho
	if currRho == nextRho {
		return
	}

	for layerIdx, layer := range r.env.Volumes {
		layerDepth := layer.Depth(curr.Position[i])
		layerRho := geo.EarthRadius - layerDepth

		var kind ocean.VolumeLayerType
		switch {
		case currRho > layerRho && nextRho <= layerRho:
			kind = ocean.FromAbove
		case currRho < layerRho && nextRho >= layerRho:
			kind = ocean.FromBelow
		default:
			continue
		}

		dt := r.timeStep * (currRho - layerRho) / (currRho - nextRho)
		position, direction, speed := collisionLocation(prev, curr, next, r.timeStep, de, az, dt)
		time := curr.Time + dt
		for _, l := range r.volumeListeners {
			l.Collision(de, az, time, position, direction, speed, r.freqs,
				curr.Attenuation[i], curr.Phase[i], layerIdx, kind)
		}
	}
}

func (r *reflectionEngine) checkSurface(past, prev, curr, next *wavefront.Frame, de, az int) bool {
	i := curr.Index(de, az)
	if next.Position[i].Altitude() <= 0 {
		return false
	}
	if !r.surfaceReflection(past, prev, curr, next, de, az) {
		return false
	}
	curr.Surface[i]++
	prev.Surface[i] = curr.Surface[i]
	past.Surface[i] = curr.Surface[i]
	r.checkBottom(past, prev, curr, next, de, az)
	return true
}

func (r *reflectionEngine) checkBottom(past, prev, curr, next *wavefront.Frame, de, az int) bool {
	i := curr.Index(de, az)
	depth, _ := r.env.Bottom.Height(next.Position[i])
	depth = depth - next.Position[i].Rho
	if depth <= 0 {
		return false
	}
	if !r.bottomReflection(past, prev, curr, next, de, az, depth) {
		return false
	}
	curr.Bottom[i]++
	prev.Bottom[i] = curr.Bottom[i]
	past.Bottom[i] = curr.Bottom[i]
	r.checkSurface(past, prev, curr, next, de, az)
	return true
}

func (r *reflectionEngine) bottomReflection(past, prev, curr, next *wavefront.Frame, de, az int, depth float64) bool {
	i := curr.Index(de, az)
	position := curr.Position[i]
	direction := curr.Slowness[i]
	c := curr.SoundSpd[i]
	c2 := c * c

	bottomRho, normal := r.env.Bottom.Height(position)
	if bottomRho-geo.EarthRadius > tooShallow {
		nrm := normal.Theta*normal.Theta + normal.Phi*normal.Phi
		if nrm > 0 {
			normal = geo.Vector{Rho: 0, Theta: normal.Theta / nrm, Phi: normal.Phi / nrm}
		}
	}

	full := direction.Scale(c2)
	dotFull := geo.Dot(normal, full)

	heightWater := position.Rho - bottomRho
	dotWater := heightWater * normal.Rho
	var timeWater float64
	if dotFull >= 0 {
		timeWater = r.timeStep * heightWater / depth
	} else {
		timeWater = -dotWater / dotFull
	}
	timeWater = r.clampTimeWater(de, az, timeWater)

	position, direction, c = collisionLocation(prev, curr, next, r.timeStep, de, az, timeWater)
	c2 = c * c
	full = direction.Scale(c2)
	dotFull = geo.Dot(normal, full)
	if dotFull >= 0 {
		dotFull = -(heightWater + depth) * normal.Rho
	}
	grazing := math.Asin(math.Min(1, -dotFull/(c*r.timeStep)))

	amp, ph := r.env.Bottom.ReflectLoss(position, r.freqs, grazing)
	ni := next.Index(de, az)
	for f := range r.freqs {
		next.Attenuation[ni][f] += amp[f]
		next.Phase[ni][f] += ph[f]
	}

	dotFull *= 2
	direction = geo.Vector{
		Rho:   direction.Rho - dotFull*normal.Rho,
		Theta: direction.Theta - dotFull*normal.Theta,
		Phi:   direction.Phi - dotFull*normal.Phi,
	}
	n := direction.Norm() * c
	if n > 0 {
		direction = direction.Scale(1 / n)
	}

	r.reinit(past, prev, curr, next, de, az, timeWater, position, direction, c)
	return true
}

func (r *reflectionEngine) surfaceReflection(past, prev, curr, next *wavefront.Frame, de, az int) bool {
	i := curr.Index(de, az)
	c := curr.SoundSpd[i]
	d := c * c * curr.Slowness[i].Rho
	var timeWater float64
	if d != 0 {
		timeWater = -curr.Position[i].Altitude() / d
	}
	timeWater = r.clampTimeWater(de, az, timeWater)

	position, direction, c := collisionLocation(prev, curr, next, r.timeStep, de, az, timeWater)
	horiz := math.Hypot(direction.Theta, direction.Phi)
	grazing := math.Atan2(direction.Rho, horiz)
	if grazing <= 0 {
		return false // near miss
	}

	amp, _ := r.env.Surface.ReflectLoss(position, r.freqs, grazing)
	ni := next.Index(de, az)
	for f := range r.freqs {
		next.Attenuation[ni][f] += amp[f]
		next.Phase[ni][f] -= math.Pi
	}

	direction.Rho = -direction.Rho
	r.reinit(past, prev, curr, next, de, az, timeWater, position, direction, c)
	return true
}

// collisionLocation refines position/direction/speed at the fractional
// collision time using a second-order (centered difference) Taylor series
// built from prev/curr/next, matching the precision the caustic/edge
// detection that follows expects.
func collisionLocation(prevFrame, currFrame, nextFrame *wavefront.Frame, h float64, de, az int, dt float64) (geo.Point, geo.Vector, float64) {
	time1 := 2 * h
	time2 := h * h
	dt2 := dt * dt

	pi, ci, ni := prevFrame.Index(de, az), currFrame.Index(de, az), nextFrame.Index(de, az)

	dC := (nextFrame.SoundSpd[ni] - prevFrame.SoundSpd[pi]) / time1
	d2C := (nextFrame.SoundSpd[ni] + prevFrame.SoundSpd[pi] - 2*currFrame.SoundSpd[ci]) / time2
	c := currFrame.SoundSpd[ci] + dC*dt + 0.5*d2C*dt2

	taylor3 := func(p, cur, nx float64) float64 {
		d1 := (nx - p) / time1
		d2 := (nx + p - 2*cur) / time2
		return cur + d1*dt + 0.5*d2*dt2
	}
	pos := geo.Point{
		Rho:   taylor3(prevFrame.Position[pi].Rho, currFrame.Position[ci].Rho, nextFrame.Position[ni].Rho),
		Theta: taylor3(prevFrame.Position[pi].Theta, currFrame.Position[ci].Theta, nextFrame.Position[ni].Theta),
		Phi:   taylor3(prevFrame.Position[pi].Phi, currFrame.Position[ci].Phi, nextFrame.Position[ni].Phi),
	}
	dir := geo.Vector{
		Rho:   taylor3(prevFrame.Slowness[pi].Rho, currFrame.Slowness[ci].Rho, nextFrame.Slowness[ni].Rho),
		Theta: taylor3(prevFrame.Slowness[pi].Theta, currFrame.Slowness[ci].Theta, nextFrame.Slowness[ni].Theta),
		Phi:   taylor3(prevFrame.Slowness[pi].Phi, currFrame.Slowness[ci].Phi, nextFrame.Slowness[ni].Phi),
	}
	return pos, dir, c
}

// reinit re-seeds a single ray's (past, prev, curr, next) history after a
// reflection: curr becomes the collision point run backward by timeWater,
// then past/prev are rebuilt by two more backward RK3 steps, and next is
// rebuilt by one forward AB3 step from that fresh history. This keeps the
// surrounding grid's AB3 stepping third-order accurate straight through the
// reflection, at the cost of one ray's worth of extra RK3 work.
func (r *reflectionEngine) reinit(past, prev, curr, next *wavefront.Frame, de, az int, timeWater float64, position geo.Point, direction geo.Vector, speed float64) {
	collision := wavefront.NewFrame(1, 1, curr.NFreq, 0)
	collision.Position[0] = position
	collision.Slowness[0] = direction
	collision.Update(r.env.Profile, nil, nil)

	p, pv, c, nx := wavefront.SingleRayHistory(r.timeStep, timeWater, r.env.Profile, collision)

	i := curr.Index(de, az)
	past.CopyRayFrom(i, p, 0)
	prev.CopyRayFrom(i, pv, 0)
	curr.CopyRayFrom(i, c, 0)
	next.CopyRayFrom(i, nx, 0)
}
