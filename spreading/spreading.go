// Package spreading implements the hybrid-Gaussian beam spreading model:
// intensity loss is computed as the sum of Gaussian beam contributions
// from every ray in the fan, weighted by their local half-widths, rather
// than as a single-ray geometric Jacobian.
package spreading

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
	"github.com/oceanacoustics/waveq3d/wavefront"
)

const (
	spreadingWidth = 2 * math.Pi
	threshold      = 1.002305238
)

// Model produces a per-frequency linear intensity (not dB; the eigenray
// extractor converts it to a dB loss) for a target offset from the ray at
// (deIdx, azIdx) by a refined (time, DE, AZ) offset.
type Model interface {
	Intensity(target geo.Point, deIdx, azIdx int, offset [3]float64, distance [3]float64) []float64
}

// HybridGaussian is the spreading.Model described in spec.md §4.5: a sum
// of Gaussian beam contributions walking outward in DE and AZ from the
// CPA ray, combined multiplicatively.
type HybridGaussian struct {
	DE, AZ      []float64 // source launch angles, degrees
	TimeStep    float64
	Frequencies []float64
	Profile     ocean.SoundSpeed

	prev, curr, next *wavefront.Frame

	normDE []float64   // half-width normalization per DE index
	normAZ [][]float64 // [de][az] normalization

	azWraps bool // fan covers a full 360 degrees
}

// NewHybridGaussian precomputes the per-cell normalization factors
// described in spec.md: norm(de,az) = (sin(DE[de+1]) - sin(DE[de])) *
// (AZ[az+1] - AZ[az]) / ΔDE(de) / sqrt(2*pi).
func NewHybridGaussian(de, az []float64, timeStep float64, freqs []float64, profile ocean.SoundSpeed) *HybridGaussian {
	h := &HybridGaussian{DE: de, AZ: az, TimeStep: timeStep, Frequencies: freqs, Profile: profile}
	n := len(de)
	m := len(az)
	h.normDE = make([]float64, n)
	h.normAZ = make([][]float64, n)
	for d := 0; d < n; d++ {
		h.normAZ[d] = make([]float64, m)
	}
	for d := 0; d < n-1; d++ {
		de1, de2 := de[d]*math.Pi/180, de[d+1]*math.Pi/180
		h.normDE[d] = de2 - de1
		for a := 0; a < m-1; a++ {
			az1, az2 := az[a]*math.Pi/180, az[a+1]*math.Pi/180
			h.normAZ[d][a] = (math.Sin(de2) - math.Sin(de1)) * (az2 - az1) / h.normDE[d]
		}
		h.normAZ[d][m-1] = h.normAZ[d][0]
	}
	h.normDE[n-1] = h.normDE[0]
	for a := 0; a < m; a++ {
		h.normAZ[n-1][a] = h.normAZ[0][a]
	}
	for d := range h.normDE {
		h.normDE[d] /= math.Sqrt(2 * math.Pi)
		for a := range h.normAZ[d] {
			h.normAZ[d][a] /= math.Sqrt(2 * math.Pi)
		}
	}
	if m > 1 {
		first, last := az[0], az[m-1]
		h.azWraps = math.Abs(math.Abs(last-first)-360) < 1e-9
	}
	return h
}

// SetFrames gives the model access to the three frames it needs for
// geodesic half-width interpolation. Called by the queue once per step
// before any target's intensity is queried.
func (h *HybridGaussian) SetFrames(prev, curr, next *wavefront.Frame) {
	h.prev, h.curr, h.next = prev, curr, next
}

func gaussian(dist, width, norm float64) float64 {
	sigma2 := width * width
	if sigma2 < 1e-300 {
		sigma2 = 1e-300
	}
	return norm * math.Exp(-dist*dist/(2*sigma2)) / width
}

// Intensity implements Model. The per-frequency spreading width
// (2*pi*c/f)^2 is computed here but not applied to the Gaussian sums, so
// every frequency receives the same intensity.
func (h *HybridGaussian) Intensity(target geo.Point, deIdx, azIdx int, offset [3]float64, distance [3]float64) []float64 {
	speed, _ := h.Profile.Speed([]geo.Point{target})
	c := speed[0]

	spread := make([]float64, len(h.Frequencies))
	for fi, f := range h.Frequencies {
		spread[fi] = spreadingWidth * c / f
	}
	floats.Mul(spread, spread)

	az := azIdx
	corrected := offset
	if offset[2] < 0 {
		if azIdx-1 < 0 {
			az = len(h.AZ) - 2
		} else {
			az = azIdx - 1
		}
		corrected[2]++
	}
	de := deIdx
	if offset[1] < 0 {
		de = deIdx - 1
		corrected[1]++
	}

	intensityDE := h.sumDE(deIdx, az, corrected, distance, spread)
	intensityAZ := h.sumAZ(de, azIdx, corrected, distance, spread)

	out := make([]float64, len(h.Frequencies))
	for i := range out {
		out[i] = intensityDE[i] * intensityAZ[i]
	}
	return out
}

// widthDE interpolates the half geodesic distance from ray (de,az) to ray
// (de+1,az), across the AZ offset fraction and the time offset fraction.
func (h *HybridGaussian) widthDE(de, az int, offset [3]float64) float64 {
	nde, naz := len(h.DE), len(h.AZ)
	if de < 0 || de >= nde-1 {
		return 0
	}
	u := math.Abs(offset[0]) / h.TimeStep
	azInc := 1.0
	if az < naz-1 {
		azInc = (h.AZ[az+1] - h.AZ[az]) * math.Pi / 180
	}
	v := 0.0
	if azInc != 0 {
		v = math.Abs(offset[2]) / azInc
	}
	azWrap := az + 1
	if azWrap >= naz-1 {
		azWrap = 0
	}

	length1 := chord(h.curr, de, az, de+1, az)
	if v >= 1e-10 {
		l2 := chord(h.curr, de, azWrap, de+1, azWrap)
		length1 = (1-v)*length1 + v*l2
	}
	if u < 1e-10 {
		return 0.5 * length1
	}
	other := h.next
	if offset[0] < 0 {
		other = h.prev
	}
	length2 := chord(other, de, az, de+1, az)
	if v >= 1e-10 {
		l2 := chord(other, de, azWrap, de+1, azWrap)
		length2 = (1-v)*length2 + v*l2
	}
	return 0.5 * ((1-u)*length1 + u*length2)
}

// widthAZ interpolates the half geodesic distance from ray (de,az) to ray
// (de,az+1), across the DE offset fraction and the time offset fraction.
func (h *HybridGaussian) widthAZ(de, az int, offset [3]float64) float64 {
	nde, naz := len(h.DE), len(h.AZ)
	if az < 0 || az >= naz-1 {
		az = naz - 2
	}
	u := math.Abs(offset[0]) / h.TimeStep
	deInc := 1.0
	if de < nde-1 {
		deInc = (h.DE[de+1] - h.DE[de]) * math.Pi / 180
	}
	v := 0.0
	if deInc != 0 {
		v = math.Abs(offset[1]) / deInc
	}
	deMax := de
	if de+1 >= nde-1 {
		deMax = nde - 3
		if deMax < 0 {
			deMax = 0
		}
	}
	azWrap := az + 1
	if azWrap > naz-1 {
		azWrap = 0
	}

	length1 := chord(h.curr, de, az, de, azWrap)
	if v >= 1e-10 && math.Abs(v-1) >= 1e-10 {
		l2 := chord(h.curr, deMax+1, az, deMax+1, azWrap)
		length1 = (1-v)*length1 + v*l2
	}
	if u < 1e-10 {
		return 0.5 * length1
	}
	other := h.next
	if offset[0] < 0 {
		other = h.prev
	}
	length2 := chord(other, de, az, de, azWrap)
	if v >= 1e-10 && math.Abs(v-1) >= 1e-10 {
		l2 := chord(other, deMax+1, az, deMax+1, azWrap)
		length2 = (1-v)*length2 + v*l2
	}
	return 0.5 * ((1-u)*length1 + u*length2)
}

func chord(f *wavefront.Frame, d1, a1, d2, a2 int) float64 {
	p1 := f.Position[f.Index(d1, a1)]
	p2 := f.Position[f.Index(d2, a2)]
	return geo.GreatCircleDistance(p1, p2)
}

func (h *HybridGaussian) sumDE(de, az int, offset [3]float64, distance [3]float64, spread []float64) []float64 {
	n := len(h.Frequencies)
	out := make([]float64, n)
	d := de
	if d == len(h.DE)-1 {
		d--
	}
	scale := 1.0
	width := h.widthDE(d, az, offset)
	if math.Abs(width) > 80 {
		scale = 5.0
	}
	initialWidth := width
	L := distance[1]
	dist := L - width
	for fi := range out {
		out[fi] = scale * gaussian(dist, width, h.cellNormDE(d))
	}

	d = de - 1
	width = h.widthDE(d, az, offset)
	dist = L + width
	for fi := range out {
		out[fi] += gaussian(dist, width, h.cellNormDE(d))
	}

	if out[0] < 1e-10 {
		return out
	}

	// walk to lower DE indices
	for d = de - 2; d >= 0; d-- {
		prevDist := dist
		dist += width
		if h.curr.OnEdge[h.curr.Index(d+1, az)] && h.curr.OnEdge[h.curr.Index(d, az)] {
			if h.curr.Caustic[h.curr.Index(d+1, az)] != h.curr.Caustic[h.curr.Index(d, az)] {
				break
			}
			dist += width
		} else {
			width = h.widthDE(d, az, offset)
			dist += width
			if math.Abs(prevDist) > math.Abs(dist) {
				break
			}
		}
		old := out[0]
		if h.curr.Caustic[h.curr.Index(d, az)] != 0 && scale != 1.0 {
			scale = 0.25
		}
		for fi := range out {
			out[fi] += scale * gaussian(dist, width, h.cellNormDE(d))
		}
		if out[0]/old < threshold {
			break
		}
	}

	// walk to higher DE indices
	width = initialWidth
	if math.Abs(width) > 80 {
		scale = 5.0
	}
	dist = L - width
	for d = de + 1; d < len(h.DE)-1; d++ {
		prevDist := dist
		dist -= width
		if h.curr.OnEdge[h.curr.Index(d+1, az)] && h.curr.OnEdge[h.curr.Index(d, az)] {
			if h.curr.Caustic[h.curr.Index(d+1, az)] != h.curr.Caustic[h.curr.Index(d, az)] {
				break
			}
			dist -= width
		} else {
			width = h.widthDE(d, az, offset)
			dist -= width
			if math.Abs(prevDist) > math.Abs(dist) {
				break
			}
		}
		old := out[0]
		for fi := range out {
			out[fi] += scale * gaussian(dist, width, h.cellNormDE(d))
		}
		if out[0]/old < threshold {
			break
		}
	}
	return out
}

func (h *HybridGaussian) cellNormDE(d int) float64 {
	if d < 0 {
		d = 0
	}
	if d >= len(h.normDE) {
		d = len(h.normDE) - 1
	}
	return h.normDE[d]
}

func (h *HybridGaussian) cellNormAZ(de, az int) float64 {
	if de >= len(h.DE)-2 {
		de = 1
	}
	if de < 0 {
		de = 0
	}
	row := h.normAZ[de]
	az = ((az % len(row)) + len(row)) % len(row)
	return row[az]
}

func (h *HybridGaussian) sumAZ(de, az int, offset [3]float64, distance [3]float64, spread []float64) []float64 {
	n := len(h.Frequencies)
	out := make([]float64, n)
	size := len(h.AZ) - 1
	if size < 1 {
		size = 1
	}
	duplicate := make([]bool, size)

	var azLower, azUpper int
	if h.azWraps {
		azLower, azUpper = az, az
	} else {
		azLower, azUpper = 0, size-1
	}

	a := az
	duplicate[a%size] = true
	width := h.widthAZ(de, a, offset)
	initialWidth := width
	L := distance[2]
	dist := L - width
	for fi := range out {
		out[fi] = gaussian(dist, width, h.cellNormAZ(de, a))
	}

	if az-1 < 0 {
		a = size - 1
	} else {
		a = az - 1
	}
	duplicate[a%size] = true
	width = h.widthAZ(de, a, offset)
	dist = L + width
	for fi := range out {
		out[fi] += gaussian(dist, width, h.cellNormAZ(de, a))
	}

	if out[0] < 1e-10 {
		return out
	}

	if a-1 < 0 {
		a = size - 1
	} else {
		a--
	}
	for ((a % size) + size) % size != azLower {
		idx := ((a % size) + size) % size
		if duplicate[idx] {
			break
		}
		duplicate[idx] = true
		if h.curr.OnEdge[h.curr.Index(de, idx)] {
			break
		}
		dist += width
		width = h.widthAZ(de, idx, offset)
		dist += width
		old := out[0]
		for fi := range out {
			out[fi] += gaussian(dist, width, h.cellNormAZ(de, idx))
		}
		if out[0]/old < threshold {
			break
		}
		if a == 0 {
			a = size - 1
		} else {
			a--
		}
	}

	width = initialWidth
	dist = L - width
	a = az + 1
	for ((a % size) + size) % size != azUpper {
		if a == size {
			a = 0
		}
		idx := ((a % size) + size) % size
		if duplicate[idx] {
			break
		}
		duplicate[idx] = true
		if h.curr.OnEdge[h.curr.Index(de, idx)] {
			break
		}
		dist -= width
		width = h.widthAZ(de, idx, offset)
		dist -= width
		old := out[0]
		for fi := range out {
			out[fi] += gaussian(dist, width, h.cellNormAZ(de, idx))
		}
		if out[0]/old < threshold {
			break
		}
		a++
	}
	return out
}
