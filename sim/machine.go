package sim

// MachineState is the lifecycle state of a single machine.
type MachineState int

const (
	// StateIdle: available in the idle queue.
	StateIdle MachineState = iota
	// StateOperating: running, subject to the hazard every tick.
	StateOperating
	// StateUnderRepair: waiting for its repair to complete.
	StateUnderRepair
)

func (s MachineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOperating:
		return "operating"
	case StateUnderRepair:
		return "under-repair"
	default:
		return "unknown"
	}
}

// Machine carries the two clocks that encode a machine's state.
// RunBegin != 0 means operating since that tick; RepairEnd != 0 means under
// repair until that tick; both zero means idle.
type Machine struct {
	RunBegin  int64
	RepairEnd int64
}

// State decodes the machine's lifecycle state from its clocks.
func (m Machine) State() MachineState {
	switch {
	case m.RunBegin != 0:
		return StateOperating
	case m.RepairEnd != 0:
		return StateUnderRepair
	default:
		return StateIdle
	}
}

// StateCounts tallies machines by state.
type StateCounts struct {
	Operating   int
	Idle        int
	UnderRepair int
}

// Total returns the number of machines counted.
func (c StateCounts) Total() int {
	return c.Operating + c.Idle + c.UnderRepair
}
