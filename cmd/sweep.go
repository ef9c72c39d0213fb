package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/repair-sim/sim"
)

var (
	sweepConfigPath string
	sweepOutputDir  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every scenario of a YAML sweep file",
	Long: "Load a sweep file (defaults plus a list of scenarios), run each scenario in turn and write " +
		"one parameter-named JSON dataset per scenario. With --cache-dir, seeded scenarios that were " +
		"already simulated are reused.",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		sweep, err := sim.LoadSweep(sweepConfigPath, sim.ScenarioSpec{MaxCycles: 50000})
		if err != nil {
			logrus.Fatalf("Failed to load sweep: %v", err)
		}
		if len(sweep.Scenarios) == 0 {
			logrus.Fatalf("Sweep %s has no scenarios", sweepConfigPath)
		}
		// Reject the whole sweep before simulating anything.
		for i, sc := range sweep.Scenarios {
			if err := sc.RunConfig().Validate(); err != nil {
				logrus.Fatalf("Scenario %s: %v", scenarioLabel(sc, i), err)
			}
		}

		runner, err := newBatchRunner(cacheDir, metricsFile != "", workers)
		if err != nil {
			logrus.Fatalf("Unable to set up batch runner: %v", err)
		}
		defer runner.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		for i, sc := range sweep.Scenarios {
			name := scenarioLabel(sc, i)
			res, err := runner.Run(ctx, name, sc)
			if err != nil {
				logrus.Fatalf("Scenario %s failed: %v", name, err)
			}
			if err := emitResults(res, sweepOutputDir, os.Stdout); err != nil {
				logrus.Fatalf("Unable to write results of %s: %v", name, err)
			}
			if showSummary {
				fmt.Fprintf(os.Stderr, "# %s\n", name)
				sim.Summarize(res).Print(os.Stderr)
			}
		}
		runner.WriteMetrics(metricsFile)

		logrus.Infof("Sweep complete: %d scenarios.", len(sweep.Scenarios))
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "YAML sweep file")
	_ = sweepCmd.MarkFlagRequired("config")
	sweepCmd.Flags().StringVar(&sweepOutputDir, "output-dir", "results", "Directory for the per-scenario JSON datasets")
	sweepCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Reuse and store seeded datasets in this BadgerDB directory")
	sweepCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent trials (0 = GOMAXPROCS, 1 = sequential)")
	sweepCmd.Flags().BoolVar(&showSummary, "summary", false, "Print summary statistics to stderr")

	rootCmd.AddCommand(sweepCmd)
}
