package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RepairTime is a repair duration that also accepts "inf" (case-insensitive,
// any word starting with "inf") for repairs that never complete.
type RepairTime int64

// ParseRepairTime parses a repair duration in ticks or "inf".
func ParseRepairTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "inf") {
		return InfiniteRepair, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: repair time %q is neither an integer nor \"inf\"", ErrInvalidConfig, s)
	}
	return v, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RepairTime) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseRepairTime(node.Value)
	if err != nil {
		return err
	}
	*r = RepairTime(v)
	return nil
}

// ScenarioSpec is the file form of a run: trial count plus trial parameters.
// Keys absent from the file keep their values from before decoding.
type ScenarioSpec struct {
	Name       string     `yaml:"name"`
	TrialCount int64      `yaml:"trial_count"`
	N          int64      `yaml:"n"`
	P0         float64    `yaml:"p0"`
	S0         int64      `yaml:"s0"`
	TR         RepairTime `yaml:"tr"`
	Beta       float64    `yaml:"beta"`
	Seed       uint64     `yaml:"seed"`
	MaxCycles  int64      `yaml:"max_cycles"`
}

// NewScenarioSpec converts a run configuration into its file form.
func NewScenarioSpec(rc RunConfig) ScenarioSpec {
	c := rc.Config
	return ScenarioSpec{
		TrialCount: rc.TrialCount,
		N:          c.N,
		P0:         c.P0,
		S0:         c.S0,
		TR:         RepairTime(c.TR),
		Beta:       c.Beta,
		Seed:       c.Seed,
		MaxCycles:  c.MaxCycles,
	}
}

// RunConfig converts the scenario into the simulator's input record.
func (s ScenarioSpec) RunConfig() RunConfig {
	return RunConfig{
		TrialCount: s.TrialCount,
		Config:     NewConfig(s.N, s.P0, s.S0, int64(s.TR), s.Beta, s.Seed, s.MaxCycles),
	}
}

// SweepSpec lists scenarios to run in sequence. Each scenario starts from
// Defaults and overrides only the keys it sets.
type SweepSpec struct {
	Defaults  ScenarioSpec   `yaml:"defaults"`
	Scenarios []ScenarioSpec `yaml:"scenarios"`
}

// LoadScenario reads a scenario file on top of base. Unknown keys are errors.
func LoadScenario(path string, base ScenarioSpec) (ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioSpec{}, fmt.Errorf("reading scenario config: %w", err)
	}
	spec := base
	if err := decodeStrict(data, &spec); err != nil {
		return ScenarioSpec{}, fmt.Errorf("parsing scenario config: %w", err)
	}
	return spec, nil
}

// LoadSweep reads a sweep file on top of base. Unknown keys are errors.
func LoadSweep(path string, base ScenarioSpec) (*SweepSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	return ParseSweep(data, base)
}

// ParseSweep parses sweep YAML. The first pass rejects unknown keys; the
// second layers each scenario over the merged defaults.
func ParseSweep(data []byte, base ScenarioSpec) (*SweepSpec, error) {
	var strict SweepSpec
	if err := decodeStrict(data, &strict); err != nil {
		return nil, fmt.Errorf("parsing sweep config: %w", err)
	}

	var raw struct {
		Defaults  yaml.Node   `yaml:"defaults"`
		Scenarios []yaml.Node `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing sweep config: %w", err)
	}

	sweep := &SweepSpec{Defaults: base}
	if !raw.Defaults.IsZero() {
		if err := raw.Defaults.Decode(&sweep.Defaults); err != nil {
			return nil, fmt.Errorf("parsing sweep defaults: %w", err)
		}
	}
	sweep.Scenarios = make([]ScenarioSpec, len(raw.Scenarios))
	for i := range raw.Scenarios {
		sc := sweep.Defaults
		sc.Name = ""
		if err := raw.Scenarios[i].Decode(&sc); err != nil {
			return nil, fmt.Errorf("parsing sweep scenario %d: %w", i, err)
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario-%d", i)
		}
		sweep.Scenarios[i] = sc
	}
	return sweep, nil
}

// decodeStrict parses YAML with strict field checking: typos must cause errors.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
