// Aggregate statistics over the per-trial metrics of a batch: collapse tick,
// threshold tick and their difference.

package sim

import (
	"fmt"
	"io"
)

// Distribution summarizes one per-trial metric.
type Distribution struct {
	Mean   float64
	StdDev float64 // sample standard deviation (n-1)
	Min    int64
	Max    int64
	P50    float64
	P90    float64
	P99    float64
}

// Summary aggregates statistics about a batch for final reporting.
type Summary struct {
	Trials       int
	CappedTrials int
	Collapse     Distribution // results
	Threshold    Distribution // results_z
	Delta        Distribution // results - results_z
}

// Summarize computes a Summary from a results record.
func Summarize(r *Results) Summary {
	delta := r.ResultsDelta
	if len(delta) != len(r.Results) {
		delta = make([]int64, len(r.Results))
		for i := range r.Results {
			delta[i] = r.Results[i] - r.ResultsZ[i]
		}
	}
	return Summary{
		Trials:       len(r.Results),
		CappedTrials: r.CappedTrials,
		Collapse:     Describe(r.Results),
		Threshold:    Describe(r.ResultsZ),
		Delta:        Describe(delta),
	}
}

// Print displays the summary in the same plain layout as the run log.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Trials               : %d\n", s.Trials)
	if s.CappedTrials > 0 {
		fmt.Fprintf(w, "Capped Trials        : %d\n", s.CappedTrials)
	}
	if s.Trials == 0 {
		return
	}
	printDistribution(w, "Collapse Tick", s.Collapse)
	printDistribution(w, "Threshold Tick", s.Threshold)
	printDistribution(w, "Collapse - Threshold", s.Delta)
}

func printDistribution(w io.Writer, name string, d Distribution) {
	fmt.Fprintf(w, "%-21s: mean=%.2f std=%.2f min=%d p50=%.0f p90=%.0f p99=%.0f max=%d\n",
		name, d.Mean, d.StdDev, d.Min, d.P50, d.P90, d.P99, d.Max)
}
