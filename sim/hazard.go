package sim

import "math"

// FailureProbability returns the per-tick failure probability of a machine
// that started its current operating stint at runBegin:
//
//	p = min(1, p0 + beta*(clock - runBegin))
//
// The result is capped at 1 but not clamped at 0, so a negative beta with a
// long stint yields a negative value. The engine draws against
// failureChance, which reads any value <= 0 as "never fails".
func FailureProbability(cfg Config, clock, runBegin int64) float64 {
	return min(1.0, cfg.P0+cfg.Beta*float64(clock-runBegin))
}

// failureChance clamps a hazard value into [0, 1] for the Bernoulli draw.
func failureChance(p float64) float64 {
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	return min(p, 1.0)
}
