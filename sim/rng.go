package sim

import (
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// === SimulationKey ===

// SimulationKey identifies a reproducible batch of trials.
// Two batches with the same SimulationKey, trial count and configuration
// MUST produce bit-for-bit identical results.
type SimulationKey uint64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed uint64) SimulationKey {
	return SimulationKey(seed)
}

// ResolveSeed returns the key for a configured seed. A zero seed is replaced
// by the current wall-clock time in milliseconds, read exactly once.
func ResolveSeed(seed uint64) SimulationKey {
	return resolveSeed(seed, time.Now)
}

func resolveSeed(seed uint64, now func() time.Time) SimulationKey {
	if seed != 0 {
		return SimulationKey(seed)
	}
	ms := uint64(now().UnixMilli())
	if ms == 0 {
		ms = 1
	}
	return SimulationKey(ms)
}

// === Streams ===

const (
	// SubsystemSeeds is the PCG stream of the master generator that hands out
	// per-trial sub-seeds.
	SubsystemSeeds = "seeds"

	// SubsystemTrial is the PCG stream of every per-trial generator.
	SubsystemTrial = "trial"
)

// NewStreamRNG returns a PCG generator seeded with seed on the stream named
// by subsystem. Distinct subsystems never share a sequence for equal seeds.
func NewStreamRNG(seed uint64, subsystem string) *rand.Rand {
	return rand.New(rand.NewPCG(seed, fnv1a64(subsystem)))
}

// NewTrialRNG returns the generator owned by one trial.
func NewTrialRNG(seed uint64) *rand.Rand {
	return NewStreamRNG(seed, SubsystemTrial)
}

// SubSeeds draws count sub-seeds, in order, from the master generator seeded
// with the key. This sequence is the only source of per-trial seeds.
//
// Thread-safety: the master generator is local to the call; callers must not
// parallelize the draw itself.
func (k SimulationKey) SubSeeds(count int) []uint64 {
	if count <= 0 {
		return nil
	}
	master := NewStreamRNG(uint64(k), SubsystemSeeds)
	seeds := make([]uint64, count)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}
	return seeds
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
