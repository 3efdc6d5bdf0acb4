package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/oceanacoustics/waveq3d/geo"
)

var plotPath string

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Propagate a scenario and render a range-depth plot of the ray fan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScenario(scenarioPath)
		if err != nil {
			return err
		}
		queue, _, err := buildQueue(cfg)
		if err != nil {
			return err
		}

		source := cfg.source()
		azIdx := cfg.AZCount / 2

		p := plot.New()
		p.Title.Text = "waveq3d ray fan"
		p.X.Label.Text = "range (m)"
		p.Y.Label.Text = "depth (m)"

		tracks := make([]plotter.XYs, cfg.DECount)
		record := func() {
			for de := 0; de < cfg.DECount; de++ {
				pos := queue.RayPosition(de, azIdx)
				rng := geo.GreatCircleDistance(source, pos)
				tracks[de] = append(tracks[de], plotter.XY{X: rng, Y: -pos.Altitude()})
			}
		}

		record()
		for queue.Time() < cfg.Duration {
			queue.Step()
			record()
		}

		for i, pts := range tracks {
			if len(pts) < 2 {
				continue
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("waveq3d: building ray track %d: %w", i, err)
			}
			p.Add(line)
		}
		if err := p.Save(8*vg.Inch, 6*vg.Inch, plotPath); err != nil {
			return fmt.Errorf("waveq3d: saving plot: %w", err)
		}
		return nil
	},
}

func init() {
	plotCmd.Flags().StringVar(&plotPath, "out", "rayfan.png", "output image path")
}
