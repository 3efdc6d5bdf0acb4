package oceanfixture

import (
	"math"
	"testing"

	"github.com/oceanacoustics/waveq3d/geo"
)

func TestGriddedProfileSpeedAtExactGridNode(t *testing.T) {
	g := NewGriddedProfile([]float64{0, 1000, 2000}, []float64{-10, 0, 10}, []float64{-10, 0, 10})
	for di, d := range g.Depths {
		for li := range g.Lats {
			for oi := range g.Lons {
				g.Set(1500+d/10, di, li, oi)
			}
		}
	}

	speed, _ := g.Speed([]geo.Point{geo.FromGeodetic(0, 0, -1000)})
	if math.Abs(speed[0]-1600) > 1e-6 {
		t.Errorf("speed at exact node: want 1600 have %v", speed[0])
	}
}

func TestGriddedProfileInterpolatesBetweenNodes(t *testing.T) {
	g := NewGriddedProfile([]float64{0, 1000}, []float64{0}, []float64{0})
	g.Set(1500, 0, 0, 0)
	g.Set(1600, 1, 0, 0)

	speed, _ := g.Speed([]geo.Point{geo.FromGeodetic(0, 0, -500)})
	if math.Abs(speed[0]-1550) > 1e-6 {
		t.Errorf("speed at midpoint depth: want 1550 have %v", speed[0])
	}
}

func TestGriddedProfileClampsOutsideGrid(t *testing.T) {
	g := NewGriddedProfile([]float64{0, 1000}, []float64{0}, []float64{0})
	g.Set(1500, 0, 0, 0)
	g.Set(1600, 1, 0, 0)

	speed, _ := g.Speed([]geo.Point{geo.FromGeodetic(0, 0, -5000)})
	if math.Abs(speed[0]-1600) > 1e-6 {
		t.Errorf("speed beyond deepest node should clamp: want 1600 have %v", speed[0])
	}
}
