package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oceanacoustics/waveq3d/eigenray"
	"github.com/oceanacoustics/waveq3d/ocean"
	"github.com/oceanacoustics/waveq3d/oceanfixture"
	"github.com/oceanacoustics/waveq3d/spreading"
	"github.com/oceanacoustics/waveq3d/waveq3d"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Propagate a scenario and report eigenrays at each target.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScenario(scenarioPath)
		if err != nil {
			return err
		}
		queue, collection, err := buildQueue(cfg)
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"targets":  len(cfg.Targets),
			"de":       cfg.DECount,
			"az":       cfg.AZCount,
			"duration": cfg.Duration,
		}).Info("starting propagation")

		queue.Run(cfg.Duration)

		for t := range cfg.Targets {
			rays := collection.Eigenrays(t, 0)
			fmt.Printf("target %d: %d eigenrays\n", t, len(rays))
			for _, ray := range rays {
				fmt.Printf("  t=%.4f de=%.2f az=%.2f loss=%.1fdB\n", ray.Time, ray.SourceDE, ray.SourceAZ, ray.Intensity[0])
			}
		}
		return nil
	},
}

type collectingListener struct {
	collection *eigenray.Collection
}

func (l *collectingListener) Eigenray(row, col int, ray eigenray.Eigenray, runID uuid.UUID) {
	l.collection.Add(row, col, ray)
}

func (l *collectingListener) Check(waveTime float64, runID uuid.UUID) {}

func buildQueue(cfg *scenarioConfig) (*waveq3d.Queue, *eigenray.Collection, error) {
	de := linspace(cfg.DEMin, cfg.DEMax, cfg.DECount)
	az := linspace(cfg.AZMin, cfg.AZMax, cfg.AZCount)
	targets := cfg.targetPoints()
	profile := cfg.soundSpeed()

	model := spreading.NewHybridGaussian(de, az, cfg.TimeStep, cfg.Frequencies, profile)

	var bottom ocean.Boundary = oceanfixture.FlatBoundary{Depth: cfg.BottomDepth, LossDB: cfg.BottomLossDB}
	var surface ocean.Boundary = oceanfixture.FlatBoundary{Depth: 0, LossDB: cfg.SurfaceLossDB}

	queueCfg := waveq3d.Config{
		Source:      cfg.source(),
		SourceDE:    de,
		SourceAZ:    az,
		Frequencies: cfg.Frequencies,
		TimeStep:    cfg.TimeStep,
		Targets:     targets,
		Environment: ocean.Model{Profile: profile, Surface: surface, Bottom: bottom},
		RunID:       uuid.New(),
		Log:         logrus.NewEntry(log),
	}

	queue, err := waveq3d.New(queueCfg, model)
	if err != nil {
		return nil, nil, err
	}

	collection := eigenray.NewCollection(len(targets), 1, cfg.Frequencies)
	queue.AddEigenrayListener(&collectingListener{collection: collection})
	return queue, collection, nil
}
