// Command waveq3d runs three-dimensional underwater acoustic ray
// propagation scenarios described by a TOML configuration file.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var scenarioPath string

var rootCmd = &cobra.Command{
	Use:   "waveq3d",
	Short: "Three-dimensional underwater acoustic ray propagation.",
	Long:  "waveq3d propagates ray fans through a described ocean environment and reports eigenrays and transmission loss at a set of targets.",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "./scenario.toml", "scenario configuration file")
	rootCmd.AddCommand(runCmd, plotCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
