package wavefront

import (
	"math"
	"testing"

	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
)

// isovelocity is a minimal ocean.SoundSpeed stub used across wavefront
// tests: constant speed, zero gradient, zero attenuation.
type isovelocity struct{ c float64 }

func (p isovelocity) Speed(positions []geo.Point) ([]float64, []geo.Vector) {
	speed := make([]float64, len(positions))
	grad := make([]geo.Vector, len(positions))
	for i := range positions {
		speed[i] = p.c
	}
	return speed, grad
}

func (p isovelocity) Attenuation(position geo.Point, freqs []float64, distance float64) []float64 {
	return make([]float64, len(freqs))
}

var _ ocean.SoundSpeed = isovelocity{}

func normalized(f *Frame, env ocean.SoundSpeed) *Frame {
	speed, _ := env.Speed(f.Position)
	f.NormalizeInitialSlowness(speed)
	return f
}

func TestFrameInitWaveAndUpdate(t *testing.T) {
	source := geo.FromGeodetic(0, 0, 0)
	de := []float64{-10, 0, 10}
	az := []float64{0, 90, 180, 270}
	f := NewFrame(len(de), len(az), 1, 0)
	f.InitWave(source, de, az)
	normalized(f, isovelocity{1500})
	f.Update(isovelocity{1500}, nil, nil)

	for i := range f.Position {
		if f.Position[i] != source {
			t.Fatalf("ray %d: position should start at source", i)
		}
		if math.Abs(f.SoundSpd[i]-1500) > 1e-9 {
			t.Fatalf("ray %d: sound speed want 1500 have %v", i, f.SoundSpd[i])
		}
	}
}

func TestRK3StepHorizontalRayStaysAtConstantRadius(t *testing.T) {
	source := geo.FromGeodetic(0, 0, 0)
	f := NewFrame(1, 1, 1, 0)
	f.InitWave(source, []float64{0}, []float64{0}) // DE=0: horizontal
	normalized(f, isovelocity{1500})
	f.Update(isovelocity{1500}, nil, nil)

	next := RK3Step(1.0, f, isovelocity{1500})
	if math.Abs(next.Position[0].Rho-f.Position[0].Rho) > 1e-6 {
		t.Errorf("horizontal ray radius drifted: start=%v after=%v", f.Position[0].Rho, next.Position[0].Rho)
	}
}

func TestRK3StepVerticalRayAdvancesByCTimesH(t *testing.T) {
	source := geo.FromGeodetic(0, 0, 0)
	f := NewFrame(1, 1, 1, 0)
	f.InitWave(source, []float64{90}, []float64{0}) // DE=90: straight up
	normalized(f, isovelocity{1500})
	f.Update(isovelocity{1500}, nil, nil)

	h := 1.0
	next := RK3Step(h, f, isovelocity{1500})
	want := f.Position[0].Rho + 1500*h
	if math.Abs(next.Position[0].Rho-want) > 1.0 {
		t.Errorf("rho after 1s: want %v have %v", want, next.Position[0].Rho)
	}
}

func TestBootstrapProducesConsistentHistory(t *testing.T) {
	source := geo.FromGeodetic(0, 0, -1000)
	de := []float64{-5, 0, 5}
	az := []float64{0, 120, 240}
	curr := NewFrame(len(de), len(az), 1, 0)
	curr.InitWave(source, de, az)
	normalized(curr, isovelocity{1500})
	curr.Update(isovelocity{1500}, nil, nil)

	past, prev, next := Bootstrap(0.1, curr, isovelocity{1500})
	if past.Time >= prev.Time || prev.Time >= curr.Time || curr.Time >= next.Time {
		t.Fatalf("bootstrap times not monotonic: %v %v %v %v", past.Time, prev.Time, curr.Time, next.Time)
	}
}

func TestDetectEdgesMarksPerimeter(t *testing.T) {
	f := NewFrame(3, 3, 1, 0)
	f.DetectEdges()
	for de := 0; de < 3; de++ {
		for az := 0; az < 3; az++ {
			i := f.Index(de, az)
			onPerimeter := de == 0 || de == 2 || az == 0 || az == 2
			if f.OnEdge[i] != onPerimeter {
				t.Errorf("de=%d az=%d: onEdge=%v want %v", de, az, f.OnEdge[i], onPerimeter)
			}
		}
	}
}
