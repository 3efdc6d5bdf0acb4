package eigenray

import (
	"math"
	"testing"
)

func TestSumIncoherentSingleRayMatchesItsOwnIntensity(t *testing.T) {
	c := NewCollection(1, 1, []float64{1000})
	ray := Eigenray{Time: 1.0, SourceDE: 5, SourceAZ: 10, TargetDE: -5, TargetAZ: 190, Intensity: []float64{60}, Phase: []float64{0}}
	c.Add(0, 0, ray)

	loss := c.Sum(false)[0][0]
	if math.Abs(loss.Intensity[0]-60) > 1e-6 {
		t.Errorf("single-ray incoherent loss: want 60 have %v", loss.Intensity[0])
	}
	if math.Abs(loss.Time-1.0) > 1e-9 {
		t.Errorf("time: want 1.0 have %v", loss.Time)
	}
}

func TestSumAveragesAzimuthAcrossWraparound(t *testing.T) {
	c := NewCollection(1, 1, []float64{1000})
	c.Add(0, 0, Eigenray{Time: 1, SourceAZ: 359, Intensity: []float64{60}, Phase: []float64{0}})
	c.Add(0, 0, Eigenray{Time: 1, SourceAZ: 1, Intensity: []float64{60}, Phase: []float64{0}})

	loss := c.Sum(false)[0][0]
	if loss.SourceAZ > 5 && loss.SourceAZ < 355 {
		t.Errorf("averaged azimuth of 359/1 should be near 0/360, got %v", loss.SourceAZ)
	}
}

func TestSumEmptyTargetReportsInfiniteLoss(t *testing.T) {
	c := NewCollection(1, 1, []float64{1000})
	loss := c.Sum(true)[0][0]
	if !math.IsInf(loss.Intensity[0], 1) {
		t.Errorf("empty target loss: want +Inf have %v", loss.Intensity[0])
	}
}

func TestDeadReckonShiftsTimeByRangeOverSpeed(t *testing.T) {
	ray := Eigenray{Time: 2.0, SourceDE: 0, SourceAZ: 0, TargetDE: 0, TargetAZ: 0}
	out := DeadReckon(ray, 1500, 10000, 10150, nil, 1.0, 1, 2, 3, 4)
	if math.Abs(out.Time-2.1) > 1e-9 {
		t.Errorf("dead reckoned time: want 2.1 have %v", out.Time)
	}
	if math.Abs(out.SourceDE-1) > 1e-9 || math.Abs(out.TargetAZ-4) > 1e-9 {
		t.Errorf("dead reckoned angles not applied correctly: %+v", out)
	}
}

func TestDeadReckonRecomputesIntensityFromSpreadingAndAttenuation(t *testing.T) {
	ray := Eigenray{Time: 2.0, Intensity: []float64{60}}
	alpha := []float64{0.001}
	out := DeadReckon(ray, 1500, 10000, 10150, alpha, 1.0, 0, 0, 0, 0)

	want := ray.Intensity[0] -
		(20*math.Log10(10000)+alpha[0]*10000) +
		(20*math.Log10(10150)+alpha[0]*10150)
	if math.Abs(out.Intensity[0]-want) > 1e-9 {
		t.Errorf("dead reckoned intensity: want %v have %v", want, out.Intensity[0])
	}
}

func TestDeadReckonSkipsAdjustmentBelowPositionChangeThreshold(t *testing.T) {
	ray := Eigenray{Time: 2.0, SourceDE: 5, Intensity: []float64{60}}
	out := DeadReckon(ray, 1500, 10000, 12000, []float64{0.001}, 1e-4, 10, 10, 10, 10)
	if out.Time != ray.Time || out.SourceDE != ray.SourceDE || out.Intensity[0] != ray.Intensity[0] {
		t.Errorf("sub-threshold position change should leave the ray unchanged, got %+v", out)
	}
}
