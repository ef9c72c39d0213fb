package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sim "github.com/inference-sim/repair-sim/sim"
)

var (
	// CLI flags for the trial parameters
	trialCount int64   // Number of independent trials
	machines   int64   // Production slots that must be running (n)
	p0         float64 // Base per-tick failure probability
	spares     int64   // Spare machines (s0)
	repairTime string  // Repair duration in ticks, or "inf"
	beta       float64 // Hazard growth per tick of operation
	seed       uint64  // Base seed; 0 derives one from the wall clock
	maxCycles  int64   // Tick cap per trial; <= 0 is unlimited

	// CLI flags for execution and output
	configPath  string // YAML scenario file
	outputDir   string // Write results/{name}.json here instead of stdout
	cacheDir    string // BadgerDB dataset cache directory
	metricsFile string // Prometheus textfile output
	workers     int    // Concurrent trials; 0 = GOMAXPROCS
	showSummary bool   // Print summary statistics to stderr
	logLevel    string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "repair-sim",
	Short: "Monte Carlo reliability simulator for repairable machine pools with spares",
}

// runCmd executes one batch of trials using parameters from CLI flags and an optional YAML file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of trials and emit the results record",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		spec, err := resolveScenario(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		runner, err := newBatchRunner(cacheDir, metricsFile != "", workers)
		if err != nil {
			logrus.Fatalf("Unable to set up batch runner: %v", err)
		}
		defer runner.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := runner.Run(ctx, "run", spec)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := emitResults(res, outputDir, os.Stdout); err != nil {
			logrus.Fatalf("Unable to write results: %v", err)
		}
		if showSummary {
			sim.Summarize(res).Print(os.Stderr)
		}
		runner.WriteMetrics(metricsFile)

		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
}

func newRunID() string {
	return uuid.NewString()
}

// registerScenarioFlags attaches the trial parameter flags to fs.
func registerScenarioFlags(fs *pflag.FlagSet) {
	fs.Int64Var(&trialCount, "trials", 1000, "Number of independent trials")
	fs.Int64Var(&machines, "n", 10, "Number of machines that must be running")
	fs.Float64Var(&p0, "p0", 0.01, "Base failure probability per tick")
	fs.Int64Var(&spares, "s0", 3, "Number of spare machines")
	fs.StringVar(&repairTime, "tr", "10", "Repair duration in ticks, or \"inf\"")
	fs.Float64Var(&beta, "beta", 0.0, "Failure probability increase per tick of operation")
	fs.Uint64Var(&seed, "seed", 0, "Base seed (0 = derive from wall clock)")
	fs.Int64Var(&maxCycles, "max-cycles", 50000, "Tick cap per trial (<= 0 for unlimited)")
	fs.StringVar(&configPath, "config", "", "YAML scenario file; explicitly set flags override it")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerScenarioFlags(runCmd.Flags())
	runCmd.Flags().StringVar(&outputDir, "output-dir", "", "Write results to a parameter-named JSON file in this directory instead of stdout")
	runCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Reuse and store seeded datasets in this BadgerDB directory")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent trials (0 = GOMAXPROCS, 1 = sequential)")
	runCmd.Flags().BoolVar(&showSummary, "summary", false, "Print summary statistics to stderr")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
