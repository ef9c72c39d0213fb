package sim

import "github.com/sirupsen/logrus"

// TrialResult holds the scalar metrics of one trial.
type TrialResult struct {
	// CollapseTick is the tick at which Running < N first held, or the
	// final clock when the cap stopped the trial.
	CollapseTick int64
	// ThresholdTick is the first tick at which idle-spare availability fell
	// below AvailabilityThreshold, defaulting to CollapseTick.
	ThresholdTick int64
	// CapReached is true when the trial hit MaxCycles before collapsing.
	CapReached bool
}

// RunTrial runs one fresh Simulator until it collapses or reaches
// cfg.MaxCycles. cfg.Seed is used as the trial seed verbatim.
//
// With MaxCycles <= 0 the loop only ends on collapse; a configuration that
// can never fail then never returns.
func RunTrial(cfg Config) TrialResult {
	sim := NewSimulator(cfg)

	var res TrialResult
	for !sim.Step() {
		if !cfg.Unlimited() && sim.Clock >= cfg.MaxCycles {
			res.CapReached = true
			logrus.WithFields(logrus.Fields{
				"seed":       cfg.Seed,
				"max_cycles": cfg.MaxCycles,
			}).Debug("trial exceeded max cycles")
			break
		}
		if res.ThresholdTick == 0 && sim.Availability() < AvailabilityThreshold {
			res.ThresholdTick = sim.Clock
		}
	}

	res.CollapseTick = sim.Clock
	if res.ThresholdTick == 0 {
		res.ThresholdTick = sim.Clock
	}
	return res
}
