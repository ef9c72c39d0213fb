package cmd

import (
	"github.com/spf13/pflag"

	sim "github.com/inference-sim/repair-sim/sim"
)

// resolveScenario builds the scenario from flag values, layered as
// defaults < YAML file (--config) < explicitly set flags.
func resolveScenario(fs *pflag.FlagSet) (sim.ScenarioSpec, error) {
	tr, err := sim.ParseRepairTime(repairTime)
	if err != nil {
		return sim.ScenarioSpec{}, err
	}
	fromFlags := sim.ScenarioSpec{
		Name:       "run",
		TrialCount: trialCount,
		N:          machines,
		P0:         p0,
		S0:         spares,
		TR:         sim.RepairTime(tr),
		Beta:       beta,
		Seed:       seed,
		MaxCycles:  maxCycles,
	}
	if configPath == "" {
		return fromFlags, nil
	}

	fromFile, err := sim.LoadScenario(configPath, fromFlags)
	if err != nil {
		return sim.ScenarioSpec{}, err
	}
	return overrideChanged(fs, fromFile, fromFlags), nil
}

// overrideChanged copies into base every field whose flag was set explicitly.
func overrideChanged(fs *pflag.FlagSet, base, flags sim.ScenarioSpec) sim.ScenarioSpec {
	out := base
	if fs.Changed("trials") {
		out.TrialCount = flags.TrialCount
	}
	if fs.Changed("n") {
		out.N = flags.N
	}
	if fs.Changed("p0") {
		out.P0 = flags.P0
	}
	if fs.Changed("s0") {
		out.S0 = flags.S0
	}
	if fs.Changed("tr") {
		out.TR = flags.TR
	}
	if fs.Changed("beta") {
		out.Beta = flags.Beta
	}
	if fs.Changed("seed") {
		out.Seed = flags.Seed
	}
	if fs.Changed("max-cycles") {
		out.MaxCycles = flags.MaxCycles
	}
	return out
}
