package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertPoolInvariants checks conservation, idle-queue consistency and the
// running count against the machine clocks.
func assertPoolInvariants(t *testing.T, sim *Simulator) {
	t.Helper()
	counts := sim.Counts()
	require.Equal(t, int(sim.Config.N+sim.Config.S0), counts.Total(), "tick %d: machine count changed", sim.Clock)
	require.Equal(t, int64(counts.Operating), sim.Running, "tick %d: running != operating machines", sim.Clock)
	require.LessOrEqual(t, sim.Running, sim.Config.N)

	queued := make(map[int]bool, sim.IdleQ.Len())
	for _, idx := range sim.IdleQ.Items() {
		require.False(t, queued[idx], "tick %d: machine %d queued twice", sim.Clock, idx)
		queued[idx] = true
		require.Equal(t, StateIdle, sim.Machines[idx].State(), "tick %d: queued machine %d is not idle", sim.Clock, idx)
	}
	require.Equal(t, counts.Idle, len(queued), "tick %d: idle machines missing from queue", sim.Clock)
}

func TestNewSimulator_InitialState(t *testing.T) {
	sim := NewSimulator(NewConfig(3, 0.1, 2, 5, 0, 1, 0))

	assert.Equal(t, int64(0), sim.Clock)
	assert.Equal(t, int64(3), sim.Running)
	require.Len(t, sim.Machines, 5)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Machine{RunBegin: 1}, sim.Machines[i], "production slot %d", i)
	}
	assert.Equal(t, []int{3, 4}, sim.IdleQ.Items(), "spares start idle in index order")
	assert.Equal(t, 1.0, sim.Availability())
	assertPoolInvariants(t, sim)
}

func TestSimulator_SingleMachineCertainFailure(t *testing.T) {
	// GIVEN one machine, no spares, p0 = 1
	sim := NewSimulator(NewConfig(1, 1.0, 0, 5, 0, 12345, 10))

	// WHEN one tick passes
	collapsed := sim.Step()

	// THEN the machine is under repair until tick 6 and the system collapsed
	assert.True(t, collapsed)
	assert.Equal(t, int64(1), sim.Clock)
	assert.Equal(t, Machine{RepairEnd: 6}, sim.Machines[0])
	assert.Equal(t, 0.0, sim.Availability(), "no spares means zero availability")
}

func TestSimulator_SparesReplaceFailuresInFIFOOrder(t *testing.T) {
	// GIVEN two production machines, two spares, certain failure
	sim := NewSimulator(NewConfig(2, 1.0, 2, 5, 0, 1, 0))

	// WHEN tick 1 breaks both production machines
	require.False(t, sim.Step(), "spares cover both failures")

	// THEN spares 2 and 3 start operating at tick 1
	assert.Equal(t, int64(1), sim.Machines[2].RunBegin)
	assert.Equal(t, int64(1), sim.Machines[3].RunBegin)
	assert.Equal(t, int64(6), sim.Machines[0].RepairEnd)
	assert.Equal(t, 0, sim.IdleQ.Len())
	assertPoolInvariants(t, sim)

	// AND tick 2 breaks the spares with nothing left to replace them
	assert.True(t, sim.Step())
	assert.Equal(t, int64(0), sim.Running)
}

func TestSimulator_ZeroRepairTimeCycles(t *testing.T) {
	// GIVEN one machine, one spare, certain failure and instant repair
	sim := NewSimulator(NewConfig(1, 1.0, 1, 0, 0, 1, 0))

	// THEN each tick the repaired machine returns before the operating one
	// breaks, and the system never collapses
	for tick := 1; tick <= 20; tick++ {
		require.False(t, sim.Step(), "tick %d", tick)
		assertPoolInvariants(t, sim)
	}
}

func TestSimulator_RepairCompletesBeforeReplacement(t *testing.T) {
	// GIVEN one machine, no spares, repair of 2 ticks
	sim := NewSimulator(NewConfig(1, 1.0, 0, 2, 0, 1, 0))
	require.True(t, sim.Step()) // tick 1: breaks, repaired at 3

	// WHEN the running deficit is carried forward
	require.True(t, sim.Step()) // tick 2: still under repair

	// THEN at tick 3 the repaired machine is pulled back into service at once
	assert.False(t, sim.Step())
	assert.Equal(t, Machine{RunBegin: 3}, sim.Machines[0])
	assert.Equal(t, int64(1), sim.Running)
}

func TestSimulator_NoFailuresWithZeroHazard(t *testing.T) {
	sim := NewSimulator(NewConfig(5, 0, 5, 3, 0, 77, 0))
	for i := 0; i < 200; i++ {
		require.False(t, sim.Step())
	}
	assert.Equal(t, int64(5), sim.Running)
	assert.Equal(t, 5, sim.IdleQ.Len())
}

func TestSimulator_InvariantsHoldUnderRandomFailures(t *testing.T) {
	configs := []Config{
		NewConfig(10, 0.05, 4, 3, 0, 1, 0),
		NewConfig(4, 0.02, 8, 15, 0.001, 2, 0),
		NewConfig(1, 0.3, 1, 1, 0, 3, 0),
		NewConfig(6, 0.2, 0, 2, 0, 4, 0),
		NewConfig(3, 0.5, 3, 0, -0.01, 5, 0),
	}
	for _, cfg := range configs {
		sim := NewSimulator(cfg)
		assertPoolInvariants(t, sim)
		for i := 0; i < 300; i++ {
			if sim.Step() {
				break
			}
			assertPoolInvariants(t, sim)
		}
	}
}

func TestSimulator_SameSeedSameTrajectory(t *testing.T) {
	cfg := NewConfig(8, 0.03, 3, 4, 0.0005, 2024, 0)
	a, b := NewSimulator(cfg), NewSimulator(cfg)
	for i := 0; i < 500; i++ {
		ca, cb := a.Step(), b.Step()
		require.Equal(t, ca, cb)
		require.Equal(t, a.Machines, b.Machines)
		require.Equal(t, a.IdleQ.Items(), b.IdleQ.Items())
		if ca {
			break
		}
	}
}
