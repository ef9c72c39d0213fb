// sim/metrics_utils.go
package sim

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Bin is one point of an empirical distribution over integer ticks.
type Bin struct {
	Tick  int64
	Count int
	PMF   float64
	CDF   float64
}

type IntOrFloat64 interface {
	int | int64 | float64
}

func toFloats[T IntOrFloat64](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// CalculatePercentile returns the p-th percentile (0-100) of data using the
// empirical quantile. Returns 0 for empty input.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := toFloats(data)
	slices.Sort(sorted)
	return stat.Quantile(p/100.0, stat.Empirical, sorted, nil)
}

// CalculateMean returns the arithmetic mean of data, 0 for empty input.
func CalculateMean[T IntOrFloat64](data []T) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(toFloats(data), nil)
}

// Describe summarizes an integer sample.
func Describe(data []int64) Distribution {
	if len(data) == 0 {
		return Distribution{}
	}
	xs := toFloats(data)
	slices.Sort(xs)
	d := Distribution{
		Mean: stat.Mean(xs, nil),
		Min:  int64(xs[0]),
		Max:  int64(xs[len(xs)-1]),
		P50:  stat.Quantile(0.50, stat.Empirical, xs, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, xs, nil),
		P99:  stat.Quantile(0.99, stat.Empirical, xs, nil),
	}
	if len(xs) > 1 {
		d.StdDev = stat.StdDev(xs, nil)
	}
	if math.IsNaN(d.StdDev) {
		d.StdDev = 0
	}
	return d
}

// BuildPMF returns the empirical probability mass function of data over every
// tick from its minimum to its maximum, with the running CDF. Ticks with no
// observations appear with Count 0.
func BuildPMF(data []int64) []Bin {
	if len(data) == 0 {
		return nil
	}
	lo, hi := slices.Min(data), slices.Max(data)
	counts := make([]int, hi-lo+1)
	for _, v := range data {
		counts[v-lo]++
	}
	total := float64(len(data))
	bins := make([]Bin, len(counts))
	cdf := 0.0
	for i, c := range counts {
		pmf := float64(c) / total
		cdf += pmf
		bins[i] = Bin{Tick: lo + int64(i), Count: c, PMF: pmf, CDF: cdf}
	}
	// Guard against float drift at the tail.
	bins[len(bins)-1].CDF = 1.0
	return bins
}

// EmpiricalCDF returns the fraction of observations <= tick.
func EmpiricalCDF(data []int64, tick int64) float64 {
	if len(data) == 0 {
		return 0
	}
	n := 0
	for _, v := range data {
		if v <= tick {
			n++
		}
	}
	return float64(n) / float64(len(data))
}
