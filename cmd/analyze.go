package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/repair-sim/sim"
)

var pmfRows int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <results.json>",
	Short: "Summarize a results file and compare it with the analytic reference model",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		res, err := sim.LoadResults(args[0])
		if err != nil {
			logrus.Fatalf("Failed to load results: %v", err)
		}
		writeAnalysis(os.Stdout, res, pmfRows)
	},
}

// writeAnalysis prints the summary, the head of the collapse-tick PMF and,
// when the configuration admits one, the reference model beside it.
func writeAnalysis(w io.Writer, res *sim.Results, rows int) {
	sim.Summarize(res).Print(w)
	if len(res.Results) == 0 {
		return
	}

	ref, refErr := sim.NewReferenceModel(res.Configs)
	if refErr != nil {
		logrus.Debugf("no reference model: %v", refErr)
	} else {
		fmt.Fprintf(w, "Reference Mean       : %.2f\n", ref.Mean())
	}

	fmt.Fprintln(w, "=== Collapse Tick Distribution ===")
	if refErr == nil {
		fmt.Fprintf(w, "%8s %8s %10s %10s %10s\n", "tick", "count", "pmf", "cdf", "ref_cdf")
	} else {
		fmt.Fprintf(w, "%8s %8s %10s %10s\n", "tick", "count", "pmf", "cdf")
	}
	for i, b := range sim.BuildPMF(res.Results) {
		if rows > 0 && i >= rows {
			break
		}
		if refErr == nil {
			fmt.Fprintf(w, "%8d %8d %10.5f %10.5f %10.5f\n", b.Tick, b.Count, b.PMF, b.CDF, ref.CDF(b.Tick))
		} else {
			fmt.Fprintf(w, "%8d %8d %10.5f %10.5f\n", b.Tick, b.Count, b.PMF, b.CDF)
		}
	}
}

func init() {
	analyzeCmd.Flags().IntVar(&pmfRows, "pmf-rows", 20, "Number of distribution rows to print (0 = all)")

	rootCmd.AddCommand(analyzeCmd)
}
