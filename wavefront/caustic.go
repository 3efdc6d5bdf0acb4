package wavefront

import "math"

// DetectEdges recomputes the on-edge map on f. A ray is "on edge" if it
// sits on the grid perimeter, or if any of its four grid neighbors has a
// different (surface, bottom, caustic) reflection-family signature. The
// family is the maximal connected block of cells sharing the same counts;
// edge cells are the outer rim of such a block.
func (f *Frame) DetectEdges() {
	for de := 0; de < f.NDE; de++ {
		for az := 0; az < f.NAZ; az++ {
			i := f.Index(de, az)
			if de == 0 || de == f.NDE-1 || az == 0 || az == f.NAZ-1 {
				f.OnEdge[i] = true
				continue
			}
			edge := false
			for _, n := range [][2]int{{de - 1, az}, {de + 1, az}, {de, az - 1}, {de, az + 1}} {
				j := f.Index(n[0], n[1])
				if f.Surface[j] != f.Surface[i] || f.Bottom[j] != f.Bottom[i] || f.Caustic[j] != f.Caustic[i] {
					edge = true
					break
				}
			}
			f.OnEdge[i] = edge
		}
	}
}

// DetectCaustics compares the radial ordering of DE-adjacent rays between
// curr and next. An inversion of that ordering ((ρ_next[k] - ρ_next[k+1])
// · (ρ_curr[k] - ρ_curr[k+1]) < 0) within a single reflection family is a
// caustic: it increments next's caustic counter at the higher-DE ray and
// subtracts π/2 from phase at every frequency there.
func DetectCaustics(curr, next *Frame, freqs []float64) {
	maxDE := next.NDE - 1
	for a := 0; a < next.NAZ; a++ {
		for d := 0; d < maxDE; d++ {
			iLo, iHi := next.Index(d, a), next.Index(d+1, a)
			sameFamily := next.Surface[iHi] == next.Surface[iLo] && next.Bottom[iHi] == next.Bottom[iLo]
			if !sameFamily {
				continue
			}
			a0 := curr.Position[curr.Index(d+1, a)].Rho - curr.Position[curr.Index(d, a)].Rho
			a1 := next.Position[iHi].Rho - next.Position[iLo].Rho
			if a1*a0 < 0 {
				next.Caustic[iHi]++
				for fi := range freqs {
					next.Phase[iHi][fi] -= math.Pi / 2
				}
			}
		}
	}
}

// DetectVertices finds local extrema of a ray's radial distance across
// (prev, curr, next) that are not boundary contacts: an upper vertex is a
// local maximum of radius (ray stops rising and starts descending
// without touching a boundary), a lower vertex the opposite. Unlike
// caustics (a cross-ray fold test), vertices are a per-ray, along-track
// test.
func DetectVertices(prev, curr, next *Frame) {
	for i := range curr.Position {
		if curr.Surface[i] != prev.Surface[i] || curr.Surface[i] != next.Surface[i] {
			continue // boundary contact this step; not a free vertex
		}
		if curr.Bottom[i] != prev.Bottom[i] || curr.Bottom[i] != next.Bottom[i] {
			continue
		}
		dPrev := curr.Position[i].Rho - prev.Position[i].Rho
		dNext := next.Position[i].Rho - curr.Position[i].Rho
		if dPrev > 0 && dNext < 0 {
			next.Upper[i] = curr.Upper[i] + 1
		} else if dPrev < 0 && dNext > 0 {
			next.Lower[i] = curr.Lower[i] + 1
		} else {
			next.Upper[i] = curr.Upper[i]
			next.Lower[i] = curr.Lower[i]
		}
	}
}
