package waveq3d

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oceanacoustics/waveq3d/eigenray"
	"github.com/oceanacoustics/waveq3d/geo"
	"github.com/oceanacoustics/waveq3d/ocean"
	"github.com/oceanacoustics/waveq3d/oceanfixture"
	"github.com/oceanacoustics/waveq3d/spreading"
)

func validConfig() Config {
	de := []float64{-10, -5, 0, 5, 10}
	az := []float64{0, 90, 180, 270}
	return Config{
		Source:      geo.FromGeodetic(0, 0, -1000),
		SourceDE:    de,
		SourceAZ:    az,
		Frequencies: []float64{1000},
		TimeStep:    0.1,
		Targets:     []geo.Point{geo.FromGeodetic(0.05, 0, -1000)},
		Environment: ocean.Model{
			Profile: oceanfixture.Isovelocity{Speed: 1500},
			Surface: oceanfixture.FlatBoundary{Depth: 0},
			Bottom:  oceanfixture.FlatBoundary{Depth: 5000},
		},
		RunID: uuid.New(),
	}
}

func newModel(cfg Config) spreading.Model {
	return spreading.NewHybridGaussian(cfg.SourceDE, cfg.SourceAZ, cfg.TimeStep, cfg.Frequencies, cfg.Environment.Profile)
}

func TestNewRejectsTooFewAngles(t *testing.T) {
	cfg := validConfig()
	cfg.SourceDE = []float64{0, 5}
	if _, err := New(cfg, newModel(cfg)); err == nil {
		t.Fatal("expected a ConfigError for fewer than 3 DE samples")
	}
}

func TestNewRejectsEmptyFrequencies(t *testing.T) {
	cfg := validConfig()
	cfg.Frequencies = nil
	if _, err := New(cfg, newModel(cfg)); err == nil {
		t.Fatal("expected a ConfigError for empty frequency set")
	}
}

func TestNewRejectsNonPositiveTimeStep(t *testing.T) {
	cfg := validConfig()
	cfg.TimeStep = 0
	if _, err := New(cfg, newModel(cfg)); err == nil {
		t.Fatal("expected a ConfigError for non-positive time step")
	}
}

func TestNewRejectsIncompleteEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.Environment.Surface = nil
	if _, err := New(cfg, newModel(cfg)); err == nil {
		t.Fatal("expected a ConfigError for a missing surface boundary")
	}
}

type recordingListener struct {
	rays   []eigenray.Eigenray
	checks int
}

func (l *recordingListener) Eigenray(row, col int, ray eigenray.Eigenray, runID uuid.UUID) {
	l.rays = append(l.rays, ray)
}
func (l *recordingListener) Check(waveTime float64, runID uuid.UUID) { l.checks++ }

func TestStepAdvancesTimeAndNotifiesListeners(t *testing.T) {
	cfg := validConfig()
	q, err := New(cfg, newModel(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l := &recordingListener{}
	q.AddEigenrayListener(l)

	start := q.Time()
	for i := 0; i < 20; i++ {
		q.Step()
	}
	if q.Time() <= start {
		t.Errorf("time did not advance: start=%v end=%v", start, q.Time())
	}
	if l.checks != 20 {
		t.Errorf("expected 20 Check notifications, got %d", l.checks)
	}
}

func TestNewWiresLogAndStrictInstabilityIntoReflectionEngine(t *testing.T) {
	cfg := validConfig()
	cfg.Log = logrus.NewEntry(logrus.New())
	cfg.StrictInstability = true

	q, err := New(cfg, newModel(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if q.reflect.log != cfg.Log {
		t.Error("reflectionEngine.log was not wired from Config.Log")
	}
	if !q.reflect.strict {
		t.Error("reflectionEngine.strict was not wired from Config.StrictInstability")
	}
}

func TestRunStepsUntilDuration(t *testing.T) {
	cfg := validConfig()
	q, err := New(cfg, newModel(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q.Run(1.0)
	if q.Time() < 1.0 {
		t.Errorf("Run should advance at least to duration: time=%v", q.Time())
	}
}
