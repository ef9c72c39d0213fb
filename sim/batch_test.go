package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseTestConfig(seed uint64) Config {
	return NewConfig(10, 0.01, 3, 10, 0, seed, 50000)
}

// TestRunTrials_SameSeedIdenticalResults verifies that a fixed base seed and
// trial count reproduce the aggregate output bit for bit.
func TestRunTrials_SameSeedIdenticalResults(t *testing.T) {
	ctx := context.Background()
	r1, err := RunTrials(ctx, 1000, baseTestConfig(42), Options{})
	require.NoError(t, err)
	r2, err := RunTrials(ctx, 1000, baseTestConfig(42), Options{})
	require.NoError(t, err)

	assert.Equal(t, r1.Results, r2.Results)
	assert.Equal(t, r1.ResultsZ, r2.ResultsZ)
	assert.Len(t, r1.Results, 1000)
	assert.Len(t, r1.ResultsZ, 1000)
}

func TestRunTrials_DifferentSeedDifferentResults(t *testing.T) {
	ctx := context.Background()
	r1, err := RunTrials(ctx, 200, baseTestConfig(42), Options{})
	require.NoError(t, err)
	r2, err := RunTrials(ctx, 200, baseTestConfig(43), Options{})
	require.NoError(t, err)
	assert.NotEqual(t, r1.Results, r2.Results)
}

func TestRunTrials_WorkerCountDoesNotChangeOutput(t *testing.T) {
	ctx := context.Background()
	cfg := NewConfig(6, 0.02, 2, 8, 0.0002, 9001, 10000)

	sequential, err := RunTrials(ctx, 300, cfg, Options{Workers: 1})
	require.NoError(t, err)
	for _, w := range []int{2, 7, 32} {
		parallel, err := RunTrials(ctx, 300, cfg, Options{Workers: w})
		require.NoError(t, err)
		assert.Equal(t, sequential.Results, parallel.Results, "workers=%d", w)
		assert.Equal(t, sequential.ResultsZ, parallel.ResultsZ, "workers=%d", w)
	}
}

func TestRunTrials_TrialIndexMapsToSubSeed(t *testing.T) {
	// GIVEN a batch with base seed 5
	cfg := NewConfig(4, 0.05, 2, 3, 0, 5, 10000)
	res, err := RunTrials(context.Background(), 20, cfg, Options{})
	require.NoError(t, err)

	// THEN trial i is exactly RunTrial with the i-th sub-seed
	for i, s := range NewSimulationKey(5).SubSeeds(20) {
		trialCfg := cfg
		trialCfg.Seed = s
		want := RunTrial(trialCfg)
		assert.Equal(t, want.CollapseTick, res.Results[i], "trial %d", i)
		assert.Equal(t, want.ThresholdTick, res.ResultsZ[i], "trial %d", i)
	}
}

func TestRunTrials_EchoesConfigWithResolvedSeed(t *testing.T) {
	cfg := baseTestConfig(0)
	res, err := RunTrials(context.Background(), 3, cfg, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.TrialCount)
	assert.NotZero(t, res.Configs.Seed, "seed 0 must be resolved before echoing")
	echoed := res.Configs
	echoed.Seed = 0
	assert.Equal(t, cfg, echoed)
}

func TestRunTrials_ScenarioCertainFailure(t *testing.T) {
	res, err := RunTrials(context.Background(), 50, NewConfig(1, 1.0, 0, 5, 0, 0, 10), Options{})
	require.NoError(t, err)
	for i := range res.Results {
		assert.Equal(t, int64(1), res.Results[i])
		assert.Equal(t, int64(1), res.ResultsZ[i])
	}
	assert.Zero(t, res.CappedTrials)
}

func TestRunTrials_ScenarioCapCounted(t *testing.T) {
	res, err := RunTrials(context.Background(), 25, NewConfig(5, 0, 5, 10, 0, 11, 100), Options{})
	require.NoError(t, err)
	assert.Equal(t, 25, res.CappedTrials)
	for i := range res.Results {
		assert.Equal(t, int64(100), res.Results[i])
		assert.Equal(t, int64(100), res.ResultsZ[i])
	}
}

func TestRunTrials_ZeroTrials(t *testing.T) {
	res, err := RunTrials(context.Background(), 0, baseTestConfig(1), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Empty(t, res.ResultsZ)
}

func TestRunTrials_RejectsInvalidInputBeforeRunning(t *testing.T) {
	var calls atomic.Int64
	obs := observerFunc(func(int, TrialResult) { calls.Add(1) })

	tests := []struct {
		name   string
		trials int64
		cfg    Config
	}{
		{"negative trial count", -1, baseTestConfig(1)},
		{"negative n", 10, NewConfig(-1, 0.1, 0, 1, 0, 1, 10)},
		{"p0 above one", 10, NewConfig(1, 1.5, 0, 1, 0, 1, 10)},
		{"negative spares", 10, NewConfig(1, 0.1, -2, 1, 0, 1, 10)},
		{"negative repair time", 10, NewConfig(1, 0.1, 0, -1, 0, 1, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := RunTrials(context.Background(), tt.trials, tt.cfg, Options{Observer: obs})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			assert.Nil(t, res, "no partial results on configuration errors")
		})
	}
	assert.Zero(t, calls.Load())
}

func TestRunTrials_ObserverSeesEveryTrial(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]TrialResult)
	obs := observerFunc(func(i int, r TrialResult) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = r
	})

	res, err := RunTrials(context.Background(), 64, baseTestConfig(8), Options{Observer: obs, Workers: 4})
	require.NoError(t, err)
	require.Len(t, seen, 64)
	for i, r := range seen {
		assert.Equal(t, res.Results[i], r.CollapseTick)
	}
}

func TestRunTrials_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := RunTrials(ctx, 100, baseTestConfig(1), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

type observerFunc func(int, TrialResult)

func (f observerFunc) ObserveTrial(i int, r TrialResult) { f(i, r) }
