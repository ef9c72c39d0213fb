// sim/simulator.go
package sim

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Simulator is the engine of one trial: it holds the clock, the machine pool,
// the idle queue and the trial's own generator, and advances them one tick at
// a time. A Simulator is created per trial and never shared between goroutines.
type Simulator struct {
	Config Config
	Clock  int64
	// Running is the number of production slots currently served by an
	// operating machine. It never exceeds Config.N.
	Running int64
	// Machines holds production slots 0..N-1 followed by spares N..N+S0-1.
	Machines []Machine
	// IdleQ holds the indices of idle machines, first-repaired first.
	IdleQ *IdleQueue

	rng *rand.Rand
}

// NewSimulator builds the initial state of a trial: every production slot
// operating since tick 1, every spare idle and queued in index order.
// cfg.Seed seeds the trial's generator as-is (no wall-clock substitution).
func NewSimulator(cfg Config) *Simulator {
	total := int(cfg.N + cfg.S0)
	s := &Simulator{
		Config:   cfg,
		Clock:    0,
		Running:  cfg.N,
		Machines: make([]Machine, total),
		IdleQ:    NewIdleQueue(total),
		rng:      NewTrialRNG(cfg.Seed),
	}
	for i := 0; i < int(cfg.N); i++ {
		s.Machines[i].RunBegin = 1
	}
	for i := int(cfg.N); i < total; i++ {
		s.IdleQ.Enqueue(i)
	}
	return s
}

// Step advances the simulation by one tick and reports whether the system
// has collapsed (Running < N).
//
// Order within a tick is fixed, since it determines the generator draw
// sequence:
//  1. repairs due at this tick complete and join the back of the idle queue;
//  2. every operating machine, in index order, draws once against its hazard;
//  3. idle machines replace broken ones from the front of the queue.
func (sim *Simulator) Step() bool {
	sim.Clock++

	broken := sim.Config.N - sim.Running
	for i := range sim.Machines {
		m := &sim.Machines[i]
		if m.RepairEnd != 0 && m.RepairEnd <= sim.Clock {
			m.RepairEnd = 0
			sim.IdleQ.Enqueue(i)
		}
		if m.RunBegin != 0 && sim.breaks(m) {
			m.RunBegin = 0
			m.RepairEnd = sim.Clock + sim.Config.TR
			broken++
			if logrus.IsLevelEnabled(logrus.TraceLevel) {
				logrus.Tracef("[tick %07d] machine %d broke, repaired at %d", sim.Clock, i, m.RepairEnd)
			}
		}
	}

	for broken > 0 {
		idx, ok := sim.IdleQ.Dequeue()
		if !ok {
			break
		}
		sim.Machines[idx].RunBegin = sim.Clock
		broken--
	}

	sim.Running = min(sim.Config.N-broken, sim.Config.N)
	return sim.Collapsed()
}

// breaks draws one uniform variate and compares it to the machine's hazard.
// Exactly one draw is consumed per operating machine per tick, whatever the
// probability, so the draw sequence depends only on which machines operate.
func (sim *Simulator) breaks(m *Machine) bool {
	p := failureChance(FailureProbability(sim.Config, sim.Clock, m.RunBegin))
	return sim.rng.Float64() < p
}

// Collapsed reports whether fewer than N production slots are running.
func (sim *Simulator) Collapsed() bool {
	return sim.Running < sim.Config.N
}

// Availability is the fraction of spares currently idle, or 0 without spares.
func (sim *Simulator) Availability() float64 {
	if sim.Config.S0 == 0 {
		return 0.0
	}
	return float64(sim.IdleQ.Len()) / float64(sim.Config.S0)
}

// Counts tallies the machine pool by state.
func (sim *Simulator) Counts() StateCounts {
	var c StateCounts
	for _, m := range sim.Machines {
		switch m.State() {
		case StateOperating:
			c.Operating++
		case StateUnderRepair:
			c.UnderRepair++
		default:
			c.Idle++
		}
	}
	return c
}
