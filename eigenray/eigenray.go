// Package eigenray finds and describes the rays that connect a source to a
// target: it scans a wavefront step for closest-point-of-approach (CPA)
// rays, refines each one's arrival time and angles with a second-order
// Taylor expansion, and accumulates the resulting arrivals per target.
package eigenray

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/spreading"
	"github.com/oceanacoustics/waveq3d/wavefront"
)

// Eigenray is one ray path connecting a source to a target.
type Eigenray struct {
	Time               float64
	SourceDE, SourceAZ float64
	TargetDE, TargetAZ float64
	Intensity          []float64 // dB, positive = transmission loss
	Phase              []float64 // radians, per frequency
	Surface            int
	Bottom             int
	Caustic            int
	Upper              int
	Lower              int
}

// Extractor scans three consecutive wavefront frames for CPA rays against a
// grid of targets and refines each hit into an Eigenray.
type Extractor struct {
	DE, AZ      []float64
	TimeStep    float64
	Frequencies []float64
	Spreading   spreading.Model
}

// Detect scans the interior of the (DE x AZ) grid (edges are excluded; a ray
// on the edge of its family cannot be a CPA by construction) for every
// target and reports every Eigenray found this step, grouped by target index.
func (x *Extractor) Detect(past, prev, curr, next *wavefront.Frame, targets []geo.Point, time float64) map[int][]Eigenray {
	found := map[int][]Eigenray{}
	if len(curr.Distance2) == 0 {
		return found
	}
	for t := range targets {
		for de := 1; de < curr.NDE-1; de++ {
			for az := 1; az < curr.NAZ-1; az++ {
				var d2 [3][3][3]float64
				if !x.isClosestRay(prev, curr, next, t, de, az, &d2) {
					continue
				}
				ray, ok := x.refine(past, prev, curr, next, targets[t], t, de, az, d2, time)
				if ok {
					found[t] = append(found[t], ray)
				}
			}
		}
	}
	return found
}

// isClosestRay implements the 27-point stencil test: the central ray's
// squared distance to the target must be a local minimum in time (strictly
// less than next, no greater than prev) and in DE/AZ among interior
// neighbors (strictly less than a higher-index neighbor, no greater than a
// lower-index one), with edge-of-family neighbors
// skipped so extrapolation past a ray-family boundary does not suppress a
// real CPA.
func (x *Extractor) isClosestRay(prev, curr, next *wavefront.Frame, t, de, az int, d2 *[3][3][3]float64) bool {
	if curr.OnEdge[curr.Index(de, az)] {
		return false
	}
	center := curr.Distance2[curr.Index(de, az)][t]
	d2[1][1][1] = center

	d2[2][1][1] = next.Distance2[next.Index(de, az)][t]
	if d2[2][1][1] <= center {
		return false
	}
	d2[0][1][1] = prev.Distance2[prev.Index(de, az)][t]
	if d2[0][1][1] < center {
		return false
	}

	for nde := 0; nde < 3; nde++ {
		for naz := 0; naz < 3; naz++ {
			if nde == 1 && naz == 1 {
				continue
			}
			d, a := de+nde-1, az+naz-1
			d2[0][nde][naz] = prev.Distance2[prev.Index(d, a)][t]
			d2[1][nde][naz] = curr.Distance2[curr.Index(d, a)][t]
			d2[2][nde][naz] = next.Distance2[next.Index(d, a)][t]

			if a == 0 || a == curr.NAZ-1 {
				continue
			}
			if curr.OnEdge[curr.Index(d, a)] {
				continue
			}

			if nde == 2 || naz == 2 {
				if d2[1][nde][naz] <= center {
					return false
				}
			} else if d2[1][nde][naz] < center {
				return false
			}
			if d2[2][nde][naz] <= center {
				return false
			}
			if d2[0][nde][naz] < center {
				return false
			}
		}
	}
	return true
}

func (x *Extractor) refine(past, prev, curr, next *wavefront.Frame, target geo.Point, t, de, az int, d2 [3][3][3]float64, time float64) (Eigenray, bool) {
	delta := [3]float64{x.TimeStep, 0, 0}
	if de+1 < len(x.DE) {
		delta[1] = (x.DE[de+1] - x.DE[de-1]) / 2
	}
	if az+1 < len(x.AZ) {
		delta[2] = (x.AZ[az+1] - x.AZ[az-1]) / 2
	}

	surface, bottom, caustic := curr.Surface[curr.Index(de, az)], curr.Bottom[curr.Index(de, az)], curr.Caustic[curr.Index(de, az)]
	unstable := false
	for nde := 0; nde < 3 && !unstable; nde++ {
		d := de + nde - 1
		for naz := 0; naz < 3 && !unstable; naz++ {
			a := az + naz - 1
			i := curr.Index(d, a)
			if prev.Surface[i] != surface || curr.Surface[i] != surface || next.Surface[i] != surface ||
				prev.Bottom[i] != bottom || curr.Bottom[i] != bottom || next.Bottom[i] != bottom ||
				prev.Caustic[i] != caustic || curr.Caustic[i] != caustic || next.Caustic[i] != caustic {
				unstable = true
			}
		}
	}

	offset, distance := computeOffsets(d2, delta, unstable)

	ray := Eigenray{
		Time:     time + offset[0],
		SourceDE: x.DE[de] + offset[1],
		SourceAZ: x.AZ[az] + offset[2],
		Surface:  surface,
		Bottom:   bottom,
		Caustic:  caustic,
		Upper:    curr.Upper[curr.Index(de, az)],
		Lower:    curr.Lower[curr.Index(de, az)],
	}
	ray.Phase = append([]float64(nil), curr.Phase[curr.Index(de, az)]...)

	intensity := x.Spreading.Intensity(target, de, az, offset, distance)
	if len(intensity) == 0 || math.IsNaN(intensity[0]) || intensity[0] <= 1e-20 {
		return Eigenray{}, false
	}
	ray.Intensity = make([]float64, len(intensity))
	for i, v := range intensity {
		ray.Intensity[i] = -10 * math.Log10(v)
	}

	dt := offset[0] / x.TimeStep
	ci, pi := curr.Index(de, az), prev.Index(de, az)
	ni := next.Index(de, az)
	for f := range ray.Intensity {
		var att float64
		if dt >= 0 {
			att = curr.Attenuation[ci][f]*(1-dt) + next.Attenuation[ni][f]*dt
		} else {
			d := 1 + dt
			att = prev.Attenuation[pi][f]*(1-d) + curr.Attenuation[ci][f]*d
		}
		ray.Intensity[f] += att
	}

	var angleDE, angleAZ [3][3][3]float64
	for nde := 0; nde < 3; nde++ {
		for naz := 0; naz < 3; naz++ {
			d, a := de+nde-1, az+naz-1
			de0, az0 := geo.AngleFromUnitDirection(prev.Position[prev.Index(d, a)], toDirection(prev, d, a))
			angleDE[0][nde][naz], angleAZ[0][nde][naz] = de0, az0
			de1, az1 := geo.AngleFromUnitDirection(curr.Position[curr.Index(d, a)], toDirection(curr, d, a))
			angleDE[1][nde][naz], angleAZ[1][nde][naz] = de1, az1
			de2, az2 := geo.AngleFromUnitDirection(next.Position[next.Index(d, a)], toDirection(next, d, a))
			angleDE[2][nde][naz], angleAZ[2][nde][naz] = de2, az2
		}
	}

	centerDE, gradDE, hessDE := taylorCoefficients(angleDE, delta, unstable)
	ray.TargetDE = centerDE + dotProd(gradDE, offset) + 0.5*quadForm(hessDE, offset)

	centerAZ, gradAZ, hessAZ := taylorCoefficients(angleAZ, delta, unstable)
	ray.TargetAZ = centerAZ + dotProd(gradAZ, offset) + 0.5*quadForm(hessAZ, offset)

	return ray, true
}

func toDirection(f *wavefront.Frame, d, a int) geo.Vector {
	i := f.Index(d, a)
	c := f.SoundSpd[i]
	return f.Slowness[i].Scale(c)
}

func dotProd(g, o [3]float64) float64 { return g[0]*o[0] + g[1]*o[1] + g[2]*o[2] }

func quadForm(h [3][3]float64, o [3]float64) float64 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += o[i] * h[i][j] * o[j]
		}
	}
	return s
}

// taylorCoefficients computes the center value, gradient, and Hessian of a
// 3x3x3 stencil of samples (time x DE x AZ) via centered finite
// differences. Off-diagonal Hessian terms are skipped (left zero) when
// diagonalOnly is set, matching the "unstable near a path-type boundary"
// fallback used by computeOffsets.
func taylorCoefficients(value [3][3][3]float64, delta [3]float64, diagonalOnly bool) (center float64, gradient [3]float64, hessian [3][3]float64) {
	d0, d1, d2 := 2*delta[0], 2*delta[1], 2*delta[2]
	center = value[1][1][1]

	if delta[0] > 0 {
		hessian[0][0] = (value[2][1][1] + value[0][1][1] - 2*center) / (delta[0] * delta[0])
	}
	if delta[1] > 0 {
		hessian[1][1] = (value[1][2][1] + value[1][0][1] - 2*center) / (delta[1] * delta[1])
	}
	if delta[2] > 0 {
		hessian[2][2] = (value[1][1][2] + value[1][1][0] - 2*center) / (delta[2] * delta[2])
	}

	if !diagonalOnly {
		g0 := (value[2][0][1] - value[0][0][1]) / d0
		g2 := (value[2][2][1] - value[0][2][1]) / d0
		hessian[0][1] = (g2 - g0) / d1
		hessian[1][0] = hessian[0][1]

		g0 = (value[2][1][0] - value[0][1][0]) / d0
		g2 = (value[2][1][2] - value[0][1][2]) / d0
		hessian[0][2] = (g2 - g0) / d2
		hessian[2][0] = hessian[0][2]

		g0 = (value[1][2][0] - value[1][0][0]) / d1
		g2 = (value[1][2][2] - value[1][0][2]) / d1
		hessian[1][2] = (g2 - g0) / d2
		hessian[2][1] = hessian[1][2]
	}

	if d0 > 0 {
		gradient[0] = (value[2][1][1] - value[0][1][1]) / d0
	}
	if d1 > 0 {
		gradient[1] = (value[1][2][1] - value[1][0][1]) / d1
	}
	if d2 > 0 {
		gradient[2] = (value[1][1][2] - value[1][1][0]) / d2
	}
	return
}

// computeOffsets solves for the (time, DE, AZ) offset from the central ray
// that sits at the minimum of the Taylor expansion of squared distance,
// with a three-tier fallback: a full 3x3 Hessian solve (via gonum/mat) when
// the Hessian is well-conditioned; a diagonal-only solve when it is not or
// the path type changes in the neighborhood; and, for the distance-per-axis
// recovery, a total-distance split when even the diagonal solve is
// unstable. Offsets are clipped to one grid spacing either side of the
// central ray.
func computeOffsets(d2 [3][3][3]float64, delta [3]float64, unstable bool) (offset, distance [3]float64) {
	center, gradient, hessian := taylorCoefficients(d2, delta, unstable)

	for n := 0; n < 3; n++ {
		h := math.Max(1e-10, hessian[n][n])
		offset[n] = -gradient[n] / h
	}
	if delta[1] > 0 && math.Abs(offset[1]/delta[1]) > 0.5 {
		unstable = true
	}

	if !unstable {
		H := mat.NewDense(3, 3, []float64{
			hessian[0][0], hessian[0][1], hessian[0][2],
			hessian[1][0], hessian[1][1], hessian[1][2],
			hessian[2][0], hessian[2][1], hessian[2][2],
		})
		if det := mat.Det(H); math.Abs(det) > 1e-10 {
			g := mat.NewVecDense(3, []float64{-gradient[0], -gradient[1], -gradient[2]})
			var x mat.VecDense
			if err := x.SolveVec(H, g); err == nil {
				offset = [3]float64{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
			}
		}
	}

	for n := 0; n < 3; n++ {
		distance[n] = -gradient[n]*offset[n] - 0.5*hessian[n][n]*offset[n]*offset[n]
	}
	if unstable {
		distance[1] = center - distance[0] - distance[2]
	}

	for n := 0; n < 3; n++ {
		distance[n] = math.Sqrt(math.Max(0, distance[n]))
		if offset[n] < 0 {
			distance[n] = -distance[n]
		}
		if delta[n] > 0 {
			offset[n] = math.Max(-delta[n], math.Min(delta[n], offset[n]))
		}
	}
	return offset, distance
}
