package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	sim "github.com/inference-sim/repair-sim/sim"
	"github.com/inference-sim/repair-sim/sim/cache"
	"github.com/inference-sim/repair-sim/sim/telemetry"
)

// batchRunner runs scenarios with the optional dataset cache and metrics
// collector shared across every batch of one command invocation.
type batchRunner struct {
	store     *cache.Store
	collector *telemetry.Collector
	workers   int
	runID     string
}

// newBatchRunner opens the cache when cacheDir is set and creates a metrics
// collector when withMetrics is set.
func newBatchRunner(cacheDir string, withMetrics bool, workers int) (*batchRunner, error) {
	b := &batchRunner{workers: workers, runID: newRunID()}
	if cacheDir != "" {
		store, err := cache.OpenPath(cacheDir)
		if err != nil {
			return nil, err
		}
		b.store = store
	}
	if withMetrics {
		b.collector = telemetry.NewCollector()
	}
	return b, nil
}

// Close releases the cache, if open.
func (b *batchRunner) Close() {
	if b.store == nil {
		return
	}
	if err := b.store.Close(); err != nil {
		logrus.Warnf("closing cache: %v", err)
	}
}

// Run validates the scenario and returns its results, from the cache when a
// seeded dataset with the same parameters was stored before.
func (b *batchRunner) Run(ctx context.Context, name string, spec sim.ScenarioSpec) (*sim.Results, error) {
	rc := spec.RunConfig()
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"run_id": b.runID, "scenario": name})

	cacheable := b.store != nil && rc.Config.Seed != 0
	if cacheable {
		res, ok, err := b.store.Get(rc.TrialCount, rc.Config)
		switch {
		case err != nil:
			log.Warnf("cache lookup failed, simulating: %v", err)
		case ok:
			log.Info("using cached dataset")
			return res, nil
		}
	}

	opts := sim.Options{Workers: b.workers, RunID: b.runID}
	if b.collector != nil {
		opts.Observer = b.collector.ForScenario(name)
	}
	log.WithFields(logrus.Fields{
		"trials": rc.TrialCount, "n": rc.Config.N, "p0": rc.Config.P0, "s0": rc.Config.S0,
		"tr": rc.Config.TR, "beta": rc.Config.Beta, "max_cycles": rc.Config.MaxCycles,
	}).Info("starting batch")

	res, err := sim.RunTrials(ctx, rc.TrialCount, rc.Config, opts)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := b.store.Put(res); err != nil {
			log.Warnf("storing dataset in cache: %v", err)
		}
	}
	return res, nil
}

// WriteMetrics writes collected metrics to path. Failures are logged only:
// the batch itself has already completed.
func (b *batchRunner) WriteMetrics(path string) {
	if b.collector == nil || path == "" {
		return
	}
	if err := b.collector.WriteTextfile(path); err != nil {
		logrus.Warnf("%v", err)
		return
	}
	logrus.Infof("Metrics written to %s", path)
}

// emitResults writes the record to a parameter-named file in dir, or to out
// when dir is empty. Terminal output is indented.
func emitResults(res *sim.Results, dir string, out io.Writer) error {
	if dir == "" {
		return res.WriteJSON(out, isTerminal(out))
	}
	path := filepath.Join(dir, sim.ResultFileName(res.TrialCount, res.Configs))
	if err := res.SaveToFile(path); err != nil {
		return err
	}
	logrus.Infof("Results written to %s", path)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// scenarioLabel names a scenario for logs and metrics.
func scenarioLabel(spec sim.ScenarioSpec, index int) string {
	if spec.Name != "" {
		return spec.Name
	}
	return fmt.Sprintf("scenario-%d", index)
}
