// Package telemetry exports batch progress as Prometheus metrics.
//
// A Collector owns its own registry (never the global default) so that
// several batches in one process, and tests, do not collide. Metrics are
// labelled by scenario; use ForScenario to obtain the sim.TrialObserver
// for one batch.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/repair-sim/sim"
)

const namespace = "repair_sim"

// Collector holds the trial metrics of every batch run in this process.
type Collector struct {
	registry  *prometheus.Registry
	trials    *prometheus.CounterVec
	capped    *prometheus.CounterVec
	collapse  *prometheus.HistogramVec
	threshold *prometheus.HistogramVec
}

// NewCollector creates a Collector with a private registry.
func NewCollector() *Collector {
	buckets := prometheus.ExponentialBuckets(1, 2, 24)
	c := &Collector{
		registry: prometheus.NewRegistry(),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_total",
			Help:      "Completed trials.",
		}, []string{"scenario"}),
		capped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_capped_total",
			Help:      "Trials stopped by max_cycles before collapsing.",
		}, []string{"scenario"}),
		collapse: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collapse_tick",
			Help:      "Tick at which running machines first fell below n.",
			Buckets:   buckets,
		}, []string{"scenario"}),
		threshold: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "threshold_tick",
			Help:      "Tick at which idle spare availability first fell below the threshold.",
			Buckets:   buckets,
		}, []string{"scenario"}),
	}
	c.registry.MustRegister(c.trials, c.capped, c.collapse, c.threshold)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ForScenario returns an observer recording under the given scenario label.
func (c *Collector) ForScenario(scenario string) sim.TrialObserver {
	return &scenarioObserver{
		trials:    c.trials.WithLabelValues(scenario),
		capped:    c.capped.WithLabelValues(scenario),
		collapse:  c.collapse.WithLabelValues(scenario),
		threshold: c.threshold.WithLabelValues(scenario),
	}
}

// WriteTextfile writes every metric in Prometheus text format to path,
// suitable for the node exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

type scenarioObserver struct {
	trials    prometheus.Counter
	capped    prometheus.Counter
	collapse  prometheus.Observer
	threshold prometheus.Observer
}

// ObserveTrial implements sim.TrialObserver. Safe for concurrent use.
func (o *scenarioObserver) ObserveTrial(_ int, res sim.TrialResult) {
	o.trials.Inc()
	if res.CapReached {
		o.capped.Inc()
	}
	o.collapse.Observe(float64(res.CollapseTick))
	o.threshold.Observe(float64(res.ThresholdTick))
}
