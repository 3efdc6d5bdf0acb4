// Package waveq3d orchestrates the wavefront propagator: it owns the
// four-frame circular queue, steps it forward in time with reflection and
// caustic detection interleaved, and reports eigenrays to listeners as they
// are found.
package waveq3d

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oceanacoustics/waveq3d/eigenray"
	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
	"github.com/oceanacoustics/waveq3d/spreading"
	"github.com/oceanacoustics/waveq3d/wavefront"
)

// Config describes a single wavefront propagation run.
type Config struct {
	Source      geo.Point
	SourceDE    []float64 // degrees, ascending
	SourceAZ    []float64 // degrees, ascending
	Frequencies []float64 // Hz
	TimeStep    float64   // seconds
	Targets     []geo.Point

	Environment ocean.Model
	RunID       uuid.UUID

	// Log receives per-step diagnostics (clamped integrator steps,
	// reflection instability). Nil-safe: a nil Log disables diagnostics.
	Log *logrus.Entry
	// StrictInstability makes a 0<=dt<=h integrator assertion failure
	// panic with *InstabilityError instead of clamping and logging it.
	// Mirrors spec's "fatal in debug, clamped in release": leave false
	// for production runs, set true in tests that want to catch a
	// misbehaving boundary model immediately.
	StrictInstability bool
}

// Queue propagates a (DE x AZ) wavefront fan forward in time, detecting
// reflections, caustics, and eigenrays at every step. Queue is not safe for
// concurrent use by multiple goroutines on the same instance; run
// independent scenarios as independent Queues instead.
type Queue struct {
	cfg       Config
	past, prev, curr, next *wavefront.Frame
	reflect   reflectionEngine
	extractor eigenray.Extractor
	targetSinTheta []float64

	eigenListeners []EigenrayListener
}

// New validates cfg and builds a Queue ready to Step. It bootstraps the
// four-frame history via RK3 so the first Step can use AB3 immediately.
func New(cfg Config, model spreading.Model) (*Queue, error) {
	if len(cfg.SourceDE) < 3 || len(cfg.SourceAZ) < 3 {
		return nil, &ConfigError{Reason: "need at least 3 DE and 3 AZ samples"}
	}
	if len(cfg.Frequencies) == 0 {
		return nil, &ConfigError{Reason: "need at least one frequency"}
	}
	if cfg.TimeStep <= 0 {
		return nil, &ConfigError{Reason: "time step must be positive"}
	}
	if cfg.Environment.Profile == nil || cfg.Environment.Surface == nil || cfg.Environment.Bottom == nil {
		return nil, &ConfigError{Reason: "environment must supply profile, surface, and bottom"}
	}
	if surfaceRho, _ := cfg.Environment.Surface.Height(cfg.Source); cfg.Source.Rho > surfaceRho {
		return nil, &ConfigError{Reason: "source is above the surface"}
	}
	if bottomRho, _ := cfg.Environment.Bottom.Height(cfg.Source); cfg.Source.Rho < bottomRho {
		return nil, &ConfigError{Reason: "source is below the bottom"}
	}

	q := &Queue{cfg: cfg}
	q.reflect = reflectionEngine{
		env: cfg.Environment, timeStep: cfg.TimeStep, freqs: cfg.Frequencies,
		log: cfg.Log, strict: cfg.StrictInstability,
	}
	q.extractor = eigenray.Extractor{DE: cfg.SourceDE, AZ: cfg.SourceAZ, TimeStep: cfg.TimeStep, Frequencies: cfg.Frequencies, Spreading: model}

	q.targetSinTheta = make([]float64, len(cfg.Targets))
	for i, t := range cfg.Targets {
		q.targetSinTheta[i] = t.SinTheta()
	}

	curr := wavefront.NewFrame(len(cfg.SourceDE), len(cfg.SourceAZ), len(cfg.Frequencies), len(cfg.Targets))
	curr.InitWave(cfg.Source, cfg.SourceDE, cfg.SourceAZ)
	speed, _ := cfg.Environment.Profile.Speed(curr.Position)
	curr.NormalizeInitialSlowness(speed)
	curr.Update(cfg.Environment.Profile, cfg.Targets, q.targetSinTheta)
	curr.DetectEdges()

	past, prev, next := wavefront.Bootstrap(cfg.TimeStep, curr, cfg.Environment.Profile)
	past.Update(cfg.Environment.Profile, cfg.Targets, q.targetSinTheta)
	prev.Update(cfg.Environment.Profile, cfg.Targets, q.targetSinTheta)
	next.Update(cfg.Environment.Profile, cfg.Targets, q.targetSinTheta)
	next.DetectEdges()

	q.past, q.prev, q.curr, q.next = past, prev, curr, next
	return q, nil
}

// AddEigenrayListener registers l to receive eigenray and tick
// notifications from every subsequent Step.
func (q *Queue) AddEigenrayListener(l EigenrayListener) {
	q.eigenListeners = append(q.eigenListeners, l)
}

// AddVolumeListener registers l to receive a Collision notification every
// time any ray crosses one of cfg.Environment.Volumes during a Step.
func (q *Queue) AddVolumeListener(l VolumeScatteringListener) {
	q.reflect.volumeListeners = append(q.reflect.volumeListeners, l)
}

// Time returns the current wavefront time, seconds since launch.
func (q *Queue) Time() float64 { return q.curr.Time }

// RayPosition returns the current position of ray (de, az), for callers
// (e.g. a diagnostic plotter) that want to trace individual ray tracks
// without reaching into the frame internals.
func (q *Queue) RayPosition(de, az int) geo.Point {
	return q.curr.Position[q.curr.Index(de, az)]
}

// Step advances the queue by one time step: reflections and caustics are
// detected against curr/next, the queue is rotated, the new next frame is
// computed by AB3, and eigenray CPAs are searched for in the freshly
// rotated (past, prev, curr, next) window.
func (q *Queue) Step() {
	if q.reflect.Sweep(q.past, q.prev, q.curr, q.next) > 0 {
		for _, f := range []*wavefront.Frame{q.past, q.prev, q.curr, q.next} {
			f.Update(q.cfg.Environment.Profile, q.cfg.Targets, q.targetSinTheta)
		}
	}
	q.next.DetectEdges()
	wavefront.DetectCaustics(q.curr, q.next, q.cfg.Frequencies)
	wavefront.DetectVertices(q.prev, q.curr, q.next)

	q.past, q.prev, q.curr, q.next = q.prev, q.curr, q.next, q.past

	wavefront.AB3Step(q.cfg.TimeStep, q.past, q.prev, q.curr, q.next)
	q.next.Update(q.cfg.Environment.Profile, q.cfg.Targets, q.targetSinTheta)

	for i := range q.next.Position {
		for f := range q.cfg.Frequencies {
			q.next.Attenuation[i][f] = q.curr.Attenuation[i][f]
			q.next.Phase[i][f] = q.curr.Phase[i][f]
		}
		q.next.Surface[i] = q.curr.Surface[i]
		q.next.Bottom[i] = q.curr.Bottom[i]
		q.next.Caustic[i] = q.curr.Caustic[i]
	}
	q.next.DetectEdges()

	if hg, ok := q.extractor.Spreading.(interface {
		SetFrames(prev, curr, next *wavefront.Frame)
	}); ok {
		hg.SetFrames(q.prev, q.curr, q.next)
	}

	found := q.extractor.Detect(q.past, q.prev, q.curr, q.next, q.cfg.Targets, q.Time())
	for idx, rays := range found {
		row, col := idx, 0 // Targets is a flat slice; callers with a 2D grid index via their own row*cols+col convention
		for _, ray := range rays {
			for _, l := range q.eigenListeners {
				l.Eigenray(row, col, ray, q.cfg.RunID)
			}
		}
	}
	for _, l := range q.eigenListeners {
		l.Check(q.Time(), q.cfg.RunID)
	}
}

// Run steps the queue until it reaches duration seconds past launch.
func (q *Queue) Run(duration float64) {
	for q.Time() < duration {
		q.Step()
	}
}
