package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
	"github.com/oceanacoustics/waveq3d/oceanfixture"
)

// scenarioConfig is the on-disk description of a propagation run, loaded
// with BurntSushi/toml the way InMAP loads its own run configuration.
type scenarioConfig struct {
	SourceLatDeg float64
	SourceLonDeg float64
	SourceDepth  float64 // meters, positive down

	DEMin, DEMax   float64
	DECount        int
	AZMin, AZMax   float64
	AZCount        int
	Frequencies    []float64
	TimeStep       float64
	Duration       float64

	Targets []targetConfig

	Profile  string // "isovelocity", "munk", "n2linear"
	Speed    float64
	AxisDepth  float64
	ScaleDepth float64
	Epsilon    float64
	Gradient   float64

	SurfaceLossDB float64
	BottomDepth   float64
	BottomLossDB  float64
}

type targetConfig struct {
	LatDeg, LonDeg float64
	Depth          float64
}

func loadScenario(path string) (*scenarioConfig, error) {
	var cfg scenarioConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("waveq3d: loading scenario %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *scenarioConfig) source() geo.Point {
	return geo.FromGeodetic(c.SourceLatDeg, c.SourceLonDeg, -c.SourceDepth)
}

func (c *scenarioConfig) targetPoints() []geo.Point {
	pts := make([]geo.Point, len(c.Targets))
	for i, t := range c.Targets {
		pts[i] = geo.FromGeodetic(t.LatDeg, t.LonDeg, -t.Depth)
	}
	return pts
}

func linspace(min, max float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = min
		return out
	}
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + step*float64(i)
	}
	return out
}

func (c *scenarioConfig) soundSpeed() ocean.SoundSpeed {
	switch c.Profile {
	case "munk":
		return oceanfixture.Munk{AxisDepth: c.AxisDepth, AxisSpeed: c.Speed, ScaleDepth: c.ScaleDepth, Epsilon: c.Epsilon}
	case "n2linear":
		return oceanfixture.N2Linear{SurfaceSpeed: c.Speed, Gradient: c.Gradient}
	default:
		return oceanfixture.Isovelocity{Speed: c.Speed}
	}
}
