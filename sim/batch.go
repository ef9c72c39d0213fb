package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TrialObserver receives every completed trial. Implementations must be safe
// for concurrent use: trials complete on worker goroutines in any order.
type TrialObserver interface {
	ObserveTrial(index int, res TrialResult)
}

// Options tunes how a batch is executed. The zero value runs on all
// available processors with no observer.
type Options struct {
	// Workers bounds the number of trials running at once.
	// <= 0 uses runtime.GOMAXPROCS(0); 1 runs trials sequentially.
	Workers int
	// Observer, if set, is notified after each trial.
	Observer TrialObserver
	// RunID tags the batch's log lines.
	RunID string
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// RunTrials validates the input, resolves the base seed, derives one sub-seed
// per trial and runs every trial on a bounded worker pool. Results are stored
// by trial index, so the output order never depends on completion order or on
// the number of workers.
//
// The returned Results echo cfg with Seed replaced by the resolved base seed.
// ctx cancellation stops dispatching new trials and returns ctx's error;
// trials already running finish normally.
func RunTrials(ctx context.Context, trialCount int64, cfg Config, opts Options) (*Results, error) {
	if err := (RunConfig{TrialCount: trialCount, Config: cfg}).Validate(); err != nil {
		return nil, err
	}

	key := ResolveSeed(cfg.Seed)
	base := cfg
	base.Seed = uint64(key)

	log := logrus.WithFields(logrus.Fields{
		"run_id": opts.RunID,
		"seed":   base.Seed,
		"trials": trialCount,
	})
	if base.Unlimited() && base.CanNeverFail() {
		log.Warn("unlimited max_cycles with a configuration that can never fail; trials will not terminate")
	}

	// Sub-seed derivation is sequential and completes before any dispatch.
	seeds := key.SubSeeds(int(trialCount))
	trials := make([]TrialResult, len(seeds))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, seed := range seeds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trialCfg := base
			trialCfg.Seed = seed
			trials[i] = RunTrial(trialCfg)
			if opts.Observer != nil {
				opts.Observer.ObserveTrial(i, trials[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("running trials: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("running trials: %w", err)
	}

	res := NewResults(trialCount, base, trials)
	if res.CappedTrials > 0 {
		log.WithField("max_cycles", base.MaxCycles).
			Warnf("%d of %d trials exceeded max cycles", res.CappedTrials, trialCount)
	}
	log.WithField("elapsed", time.Since(start)).Info("batch complete")
	return res, nil
}
