package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Results is the aggregate record of a batch. Results and ResultsZ are
// index-aligned with trial order.
type Results struct {
	TrialCount int64   `json:"trial_count"`
	Configs    Config  `json:"configs"`
	Results    []int64 `json:"results"`
	ResultsZ   []int64 `json:"results_z"`

	// ResultsDelta is Results[i] - ResultsZ[i]; filled on load, never written.
	ResultsDelta []int64 `json:"-"`
	// CappedTrials counts trials that reached max_cycles; not serialized.
	CappedTrials int `json:"-"`
}

// NewResults projects per-trial results into the two output sequences.
func NewResults(trialCount int64, cfg Config, trials []TrialResult) *Results {
	r := &Results{
		TrialCount: trialCount,
		Configs:    cfg,
		Results:    make([]int64, len(trials)),
		ResultsZ:   make([]int64, len(trials)),
	}
	for i, t := range trials {
		r.Results[i] = t.CollapseTick
		r.ResultsZ[i] = t.ThresholdTick
		if t.CapReached {
			r.CappedTrials++
		}
	}
	return r
}

// WriteJSON encodes the results to w, indented when pretty is set.
func (r *Results) WriteJSON(w io.Writer, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}

// SaveToFile writes the results as JSON to path, creating parent directories.
func (r *Results) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	if err := r.WriteJSON(f, false); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DecodeResults parses a results record and fills ResultsDelta.
func DecodeResults(rd io.Reader) (*Results, error) {
	var r Results
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing results: %w", err)
	}
	if len(r.Results) != len(r.ResultsZ) {
		return nil, fmt.Errorf("parsing results: results has %d entries, results_z has %d", len(r.Results), len(r.ResultsZ))
	}
	r.ResultsDelta = make([]int64, len(r.Results))
	for i := range r.Results {
		r.ResultsDelta[i] = r.Results[i] - r.ResultsZ[i]
	}
	return &r, nil
}

// LoadResults reads a results file written by SaveToFile.
func LoadResults(path string) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	defer f.Close()
	return DecodeResults(f)
}

// ResultFileName derives the dataset file name from the run parameters:
// {trial_count}-{n}-{p0}-{s0}-{tr}-{beta}-{seed}.json with '.' replaced by
// '_' in every component. An infinite repair time is written as "inf".
func ResultFileName(trialCount int64, cfg Config) string {
	tr := strconv.FormatInt(cfg.TR, 10)
	if cfg.TR >= InfiniteRepair {
		tr = "inf"
	}
	parts := []string{
		strconv.FormatInt(trialCount, 10),
		strconv.FormatInt(cfg.N, 10),
		escapeFloat(cfg.P0),
		strconv.FormatInt(cfg.S0, 10),
		tr,
		escapeFloat(cfg.Beta),
		strconv.FormatUint(cfg.Seed, 10),
	}
	return strings.Join(parts, "-") + ".json"
}

func escapeFloat(f float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(f, 'g', -1, 64), ".", "_")
}
