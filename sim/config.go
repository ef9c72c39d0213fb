package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is wrapped by every configuration rejection so callers can
// distinguish bad input from runtime failures with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// InfiniteRepair is the repair duration used for "tr = inf": a failed
// machine never returns to the idle pool within any reachable clock value.
// Half of MaxInt64 keeps clock+tr from overflowing.
const InfiniteRepair int64 = math.MaxInt64 / 2

// AvailabilityThreshold is the idle-spare fraction below which a trial
// records its threshold tick.
const AvailabilityThreshold = 0.2

// Config groups the parameters of one trial. It is copied by value into
// every trial with Seed replaced by that trial's sub-seed.
type Config struct {
	// N is the number of production slots that must be running.
	N         int64   `json:"n" yaml:"n" validate:"gte=0"`
	// P0 is the base per-tick failure probability.
	P0        float64 `json:"p0" yaml:"p0" validate:"gte=0,lte=1"`
	// S0 is the number of spare machines, idle at start.
	S0        int64   `json:"s0" yaml:"s0" validate:"gte=0"`
	// TR is the repair duration in ticks.
	TR        int64   `json:"tr" yaml:"tr" validate:"gte=0"`
	// Beta is the hazard growth per tick of continuous operation.
	Beta      float64 `json:"beta" yaml:"beta"`
	// Seed is the generator seed; 0 at the top level means wall clock.
	Seed      uint64  `json:"seed" yaml:"seed"`
	// MaxCycles caps the ticks per trial; <= 0 means unlimited.
	MaxCycles int64   `json:"max_cycles" yaml:"max_cycles"`
}

// NewConfig constructs a Config from positional parameters.
func NewConfig(n int64, p0 float64, s0, tr int64, beta float64, seed uint64, maxCycles int64) Config {
	return Config{N: n, P0: p0, S0: s0, TR: tr, Beta: beta, Seed: seed, MaxCycles: maxCycles}
}

// Unlimited reports whether the trial loop has no tick cap.
func (c Config) Unlimited() bool {
	return c.MaxCycles <= 0
}

// CanNeverFail reports whether no machine can ever break under this
// configuration. Combined with Unlimited it describes a trial that never ends.
func (c Config) CanNeverFail() bool {
	return c.N == 0 || (c.P0 <= 0 && c.Beta <= 0)
}

var configValidate = validator.New()

// Validate checks structural and range constraints on the configuration.
func (c Config) Validate() error {
	if math.IsNaN(c.P0) || math.IsNaN(c.Beta) || math.IsInf(c.Beta, 0) {
		return fmt.Errorf("%w: p0 and beta must be finite numbers (p0=%v, beta=%v)", ErrInvalidConfig, c.P0, c.Beta)
	}
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q (value %v)", ErrInvalidConfig, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RunConfig is the full input record: a trial count plus the per-trial
// configuration.
type RunConfig struct {
	TrialCount int64  `json:"trial_count" yaml:"trial_count"`
	Config     Config `json:"configs" yaml:",inline"`
}

// Validate rejects negative trial counts and invalid trial configurations.
func (rc RunConfig) Validate() error {
	if rc.TrialCount < 0 {
		return fmt.Errorf("%w: trial_count must be non-negative, got %d", ErrInvalidConfig, rc.TrialCount)
	}
	return rc.Config.Validate()
}
