package wavefront

import "github.com/oceanacoustics/waveq3d/ocean"

// scratch allocates a frame the same shape as src but with no attached
// targets, suitable for an intermediate RK stage that is thrown away once
// its derivatives have been read.
func scratch(src *Frame) *Frame {
	return NewFrame(src.NDE, src.NAZ, src.NFreq, 0)
}

// RK3Step advances curr by h using the classic third-order Runge-Kutta
// method (Kutta's method), evaluating the ocean's sound-speed field at
// each of the three stages. It is used only at bootstrap time and
// immediately after a reflection (see the reflection engine): cheap AB3
// stepping needs three prior frames, which RK3 is used to manufacture.
func RK3Step(h float64, curr *Frame, env ocean.SoundSpeed) *Frame {
	k1 := scratch(curr)
	copy(k1.Position, curr.Position)
	copy(k1.Slowness, curr.Slowness)
	k1.Update(env, nil, nil)

	k2 := scratch(curr)
	for i := range curr.Position {
		k2.Position[i] = curr.Position[i].AddPoint(k1.PosRate[i].Scale(h / 2))
		k2.Slowness[i] = curr.Slowness[i].Add(k1.SlowRate[i].Scale(h / 2))
	}
	k2.Update(env, nil, nil)

	k3 := scratch(curr)
	for i := range curr.Position {
		delta1Pos := k1.PosRate[i].Scale(-h)
		delta2Pos := k2.PosRate[i].Scale(2 * h)
		delta1Slow := k1.SlowRate[i].Scale(-h)
		delta2Slow := k2.SlowRate[i].Scale(2 * h)
		k3.Position[i] = curr.Position[i].AddPoint(delta1Pos.Add(delta2Pos))
		k3.Slowness[i] = curr.Slowness[i].Add(delta1Slow.Add(delta2Slow))
	}
	k3.Update(env, nil, nil)

	out := NewFrame(curr.NDE, curr.NAZ, curr.NFreq, 0)
	out.Time = curr.Time + h
	for i := range curr.Position {
		posStep := k1.PosRate[i].Scale(h / 6).Add(k2.PosRate[i].Scale(4 * h / 6)).Add(k3.PosRate[i].Scale(h / 6))
		slowStep := k1.SlowRate[i].Scale(h / 6).Add(k2.SlowRate[i].Scale(4 * h / 6)).Add(k3.SlowRate[i].Scale(h / 6))
		out.Position[i] = curr.Position[i].AddPoint(posStep)
		out.Slowness[i] = curr.Slowness[i].Add(slowStep)
	}
	return out
}

// AB3Step advances three prior frames (past = t-2h, prev = t-h, curr = t)
// to produce the frame at t+h, using the third-order Adams-Bashforth
// weights (23/12, -16/12, 5/12) on the cached time-derivatives of
// position and slowness. out is written in place (it is the queue's
// recycled scratch frame) so the hot loop performs no allocation.
func AB3Step(h float64, past, prev, curr, out *Frame) {
	const (
		w0 = 23.0 / 12.0
		w1 = -16.0 / 12.0
		w2 = 5.0 / 12.0
	)
	out.Time = curr.Time + h
	for i := range curr.Position {
		posDelta := curr.PosRate[i].Scale(w0 * h).
			Add(prev.PosRate[i].Scale(w1 * h)).
			Add(past.PosRate[i].Scale(w2 * h))
		slowDelta := curr.SlowRate[i].Scale(w0 * h).
			Add(prev.SlowRate[i].Scale(w1 * h)).
			Add(past.SlowRate[i].Scale(w2 * h))
		out.Position[i] = curr.Position[i].AddPoint(posDelta)
		out.Slowness[i] = curr.Slowness[i].Add(slowDelta)
	}
}

// Bootstrap populates prev and past from curr using two backward RK3
// steps, then takes one forward AB3 step to populate next. This mirrors
// the two-phase construction the wave queue performs once at
// construction time: step backward until a 3-point history exists, then
// re-derive the frame immediately after curr (next) with the cheaper
// method that history now supports.
func Bootstrap(h float64, curr *Frame, env ocean.SoundSpeed) (past, prev, next *Frame) {
	ntargets := 0
	if len(curr.Distance2) > 0 {
		ntargets = len(curr.Distance2[0])
	}
	prevFull := RK3Step(-h, curr, env)
	pastFull := RK3Step(-h, prevFull, env)
	for _, f := range []*Frame{prevFull, pastFull} {
		f.Update(env, nil, nil)
		if ntargets > 0 {
			f.Distance2 = make([][]float64, len(f.Position))
			for i := range f.Distance2 {
				f.Distance2[i] = make([]float64, ntargets)
			}
		}
	}

	next = NewFrame(curr.NDE, curr.NAZ, curr.NFreq, ntargets)
	AB3Step(h, pastFull, prevFull, curr, next)
	return pastFull, prevFull, next
}

// SingleRayHistory rebuilds the three-step RK3 history (past, prev, curr)
// for a single ray starting from a collision point/direction and stepping
// backward by dtWater then by h twice, followed by one AB3 step forward
// to rebuild next. It operates on 1x1 frames and is used exclusively by
// the reflection engine to re-seed a single cell's history after
// mirroring, so that the surrounding grid's AB3 stepping stays
// third-order accurate straight through the reflection.
func SingleRayHistory(h, dtWater float64, env ocean.SoundSpeed, collision *Frame) (past, prev, curr, next *Frame) {
	curr = RK3Step(-dtWater, collision, env)
	prev = RK3Step(-h, curr, env)
	past = RK3Step(-h, prev, env)
	curr.Update(env, nil, nil)
	prev.Update(env, nil, nil)
	past.Update(env, nil, nil)

	next = NewFrame(1, 1, collision.NFreq, 0)
	AB3Step(h, past, prev, curr, next)
	return past, prev, curr, next
}
