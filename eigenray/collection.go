package eigenray

import (
	"math"
	"math/cmplx"

	"github.com/oceanacoustics/waveq3d/geo"
)

const twoPi = 2 * math.Pi

// Loss is the single combined arrival computed by summing every Eigenray at
// a target, either coherently (complex phasor sum, preserves interference)
// or incoherently (summed pressure-squared, discards phase).
type Loss struct {
	Time               float64
	SourceDE, SourceAZ float64
	TargetDE, TargetAZ float64
	Intensity          []float64
	Phase              []float64
	Surface, Bottom, Caustic int
}

// Collection accumulates every Eigenray found for each target in a grid,
// plus the combined Loss once summation is requested. Target indices are
// row-major over (row, col) the same way a wavefront.Frame's targets are
// addressed.
type Collection struct {
	Rows, Cols  int
	Frequencies []float64

	list [][]Eigenray // flattened [row*Cols+col] -> append-only list per target
}

// NewCollection allocates a Collection sized for a rows x cols target grid.
func NewCollection(rows, cols int, freqs []float64) *Collection {
	c := &Collection{Rows: rows, Cols: cols, Frequencies: freqs}
	c.list = make([][]Eigenray, rows*cols)
	return c
}

func (c *Collection) index(row, col int) int { return row*c.Cols + col }

// Add appends ray to the target's arrival list.
func (c *Collection) Add(row, col int, ray Eigenray) {
	i := c.index(row, col)
	c.list[i] = append(c.list[i], ray)
}

// Eigenrays returns every arrival recorded for a target, in discovery order.
func (c *Collection) Eigenrays(row, col int) []Eigenray {
	return c.list[c.index(row, col)]
}

// Sum combines every eigenray at every target into a single Loss, either
// coherently (summing complex pressure, amplitude²-weighting the averaged
// time/angle terms) or incoherently (summing pressure², discarding phase).
// Azimuth angles are averaged as east/north unit vectors so that arrivals
// near 0/360 degrees average sensibly instead of canceling.
func (c *Collection) Sum(coherent bool) [][]Loss {
	out := make([][]Loss, c.Rows)
	for r := range out {
		out[r] = make([]Loss, c.Cols)
		for col := 0; col < c.Cols; col++ {
			out[r][col] = c.sumOne(c.list[c.index(r, col)], coherent)
		}
	}
	return out
}

func (c *Collection) sumOne(rays []Eigenray, coherent bool) Loss {
	n := len(c.Frequencies)
	loss := Loss{Intensity: make([]float64, n), Phase: make([]float64, n), Surface: -1, Bottom: -1, Caustic: -1}
	if len(rays) == 0 {
		for i := range loss.Intensity {
			loss.Intensity[i] = math.Inf(1)
		}
		return loss
	}

	var time, sourceDE, sourceAZx, sourceAZy, targetDE, targetAZx, targetAZy, wgt, maxA float64

	for f, freq := range c.Frequencies {
		var phasor complex128
		var power float64
		wgt, time, sourceDE, sourceAZx, sourceAZy, targetDE, targetAZx, targetAZy, maxA = 0, 0, 0, 0, 0, 0, 0, 0, 0

		for _, ray := range rays {
			var a float64
			if coherent {
				a = math.Pow(10, ray.Intensity[f]/-20)
				p := math.Mod(twoPi*freq*ray.Time+ray.Phase[f], twoPi)
				phasor += complex(a*math.Cos(p), a*math.Sin(p))
				a *= a
			} else {
				a = math.Pow(10, ray.Intensity[f]/-10)
				power += a
			}

			wgt += a
			time += a * ray.Time
			sourceDE += a * ray.SourceDE
			e, nn := geo.EastNorth(ray.SourceAZ)
			sourceAZx += a * e
			sourceAZy += a * nn
			targetDE += a * ray.TargetDE
			e, nn = geo.EastNorth(ray.TargetAZ)
			targetAZx += a * e
			targetAZy += a * nn
			if a > maxA {
				maxA = a
				loss.Surface, loss.Bottom, loss.Caustic = ray.Surface, ray.Bottom, ray.Caustic
			}
		}

		if coherent {
			loss.Intensity[f] = -20 * math.Log10(math.Max(1e-15, cmplx.Abs(phasor)))
			loss.Phase[f] = cmplx.Phase(phasor)
		} else {
			loss.Intensity[f] = -20 * math.Log10(math.Max(1e-15, math.Sqrt(power)))
			loss.Phase[f] = 0
		}
	}

	if wgt == 0 {
		return loss
	}
	loss.Time = time / wgt
	loss.SourceDE = sourceDE / wgt
	loss.SourceAZ = geo.AzimuthFromEastNorth(sourceAZx, sourceAZy)
	loss.TargetDE = targetDE / wgt
	loss.TargetAZ = geo.AzimuthFromEastNorth(targetAZx, targetAZy)
	return loss
}

// DeadReckon adjusts a recorded eigenray's time, angles, and intensity for a
// small change in source or target position, without re-running the
// propagator. It approximates the new path as a straight-line perturbation
// of the old one: the slant range change shifts arrival time by
// (newRange-oldRange)/speed, dDE/dAZ shift the take-off and arrival angles
// directly, and intensity is recomputed from the 20*log10(R) + alpha*R
// spreading-plus-attenuation model evaluated at oldRange and newRange (alpha
// is the per-frequency attenuation coefficient, dB/m). positionChangeNorm is
// the Cartesian distance between the old and new source/target position; the
// whole adjustment is skipped (ray returned unchanged) when it is below
// 10^-3 m, since the straight-line perturbation is unreliable at that scale
// and not worth the recompute.
func DeadReckon(ray Eigenray, speed, oldRange, newRange float64, alpha []float64, positionChangeNorm, dSourceDE, dSourceAZ, dTargetDE, dTargetAZ float64) Eigenray {
	if positionChangeNorm < 1e-3 {
		return ray
	}

	out := ray
	dRange := newRange - oldRange
	if speed > 0 {
		out.Time = ray.Time + dRange/speed
	}
	out.SourceDE = ray.SourceDE + dSourceDE
	out.SourceAZ = math.Mod(ray.SourceAZ+dSourceAZ+360, 360)
	out.TargetDE = ray.TargetDE + dTargetDE
	out.TargetAZ = math.Mod(ray.TargetAZ+dTargetAZ+360, 360)

	if oldRange > 0 && newRange > 0 && len(ray.Intensity) > 0 {
		out.Intensity = make([]float64, len(ray.Intensity))
		for f := range ray.Intensity {
			var a float64
			if f < len(alpha) {
				a = alpha[f]
			}
			oldLoss := 20*math.Log10(oldRange) + a*oldRange
			newLoss := 20*math.Log10(newRange) + a*newRange
			out.Intensity[f] = ray.Intensity[f] - oldLoss + newLoss
		}
	}
	return out
}
