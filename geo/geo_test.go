package geo

import (
	"math"
	"testing"
)

func TestFromGeodeticRoundTrip(t *testing.T) {
	cases := []struct{ lat, lon, alt float64 }{
		{45, -45, -1000},
		{0, 180, 0},
		{-33.5, 151.2, -250},
	}
	for _, c := range cases {
		p := FromGeodetic(c.lat, c.lon, c.alt)
		lat, lon, alt := p.Geodetic()
		if math.Abs(lat-c.lat) > 1e-9 || math.Abs(lon-c.lon) > 1e-9 || math.Abs(alt-c.alt) > 1e-6 {
			t.Errorf("round trip: want (%v,%v,%v) have (%v,%v,%v)", c.lat, c.lon, c.alt, lat, lon, alt)
		}
	}
}

func TestGreatCircleDistanceZero(t *testing.T) {
	p := FromGeodetic(45, -45, -1000)
	if d := GreatCircleDistance(p, p); d != 0 {
		t.Errorf("distance to self: want 0, have %v", d)
	}
}

func TestGreatCircleDistanceQuarterGlobe(t *testing.T) {
	p := FromGeodetic(0, 0, 0)
	q := FromGeodetic(0, 90, 0)
	d := GreatCircleDistance(p, q)
	want := math.Pi / 2 * EarthRadius
	if math.Abs(d-want) > 1.0 {
		t.Errorf("quarter globe distance: want %v, have %v", want, d)
	}
}

func TestChordDistance2MatchesGreatCircleNearby(t *testing.T) {
	p := FromGeodetic(45, -45, 0)
	q := FromGeodetic(45.001, -45, 0)
	chord := math.Sqrt(ChordDistance2(p, q, q.SinTheta()))
	arc := GreatCircleDistance(p, q)
	if math.Abs(chord-arc) > 1e-3 {
		t.Errorf("chord vs great circle for nearby points: chord=%v arc=%v", chord, arc)
	}
}

func TestUnitDirectionVerticalComponent(t *testing.T) {
	p := FromGeodetic(45, -45, -1000)
	for _, de := range []float64{-60, -10, 0, 10, 60} {
		for _, az := range []float64{0, 90, 180, 270, 359} {
			v := UnitDirection(p, de, az)
			// vertical component should match sin(DE) exactly.
			want := math.Sin(de * math.Pi / 180)
			if math.Abs(v.Rho-want) > 1e-12 {
				t.Errorf("de=%v az=%v: rho component want %v have %v", de, az, want, v.Rho)
			}
		}
	}
}

func TestEastNorthAzimuthRoundTrip(t *testing.T) {
	for _, az := range []float64{0, 1, 90, 180, 270, 359} {
		e, n := EastNorth(az)
		got := AzimuthFromEastNorth(e, n)
		if math.Abs(got-az) > 1e-9 {
			t.Errorf("az=%v round trip got %v", az, got)
		}
	}
}

func TestAngleFromUnitDirectionInvertsUnitDirection(t *testing.T) {
	p := FromGeodetic(20, 100, -2000)
	for _, de := range []float64{-45, -5, 0, 5, 45} {
		for _, az := range []float64{0, 45, 90, 135, 225, 315} {
			v := UnitDirection(p, de, az)
			gotDE, gotAZ := AngleFromUnitDirection(p, v)
			if math.Abs(gotDE-de) > 1e-6 {
				t.Errorf("de=%v az=%v: recovered de=%v", de, az, gotDE)
			}
			if math.Abs(gotAZ-az) > 1e-6 && math.Abs(gotAZ-az-360) > 1e-6 {
				t.Errorf("de=%v az=%v: recovered az=%v", de, az, gotAZ)
			}
		}
	}
}

func TestEastNorthAverageWrapsCorrectly(t *testing.T) {
	e1, n1 := EastNorth(359)
	e2, n2 := EastNorth(1)
	avg := AzimuthFromEastNorth((e1+e2)/2, (n1+n2)/2)
	if avg > 180 {
		avg -= 360
	}
	if math.Abs(avg) > 1e-6 {
		t.Errorf("average of 359 and 1 degrees: want ~0, have %v", avg)
	}
}
