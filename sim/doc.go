// Package sim provides the Monte Carlo reliability simulator for a repairable
// pool of machines backed by spares.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - machine.go, queue.go: machine lifecycle (operating → under repair → idle) and the idle FIFO
//   - simulator.go: the per-tick state transition and the collapse predicate
//   - trial.go: one trial from a fresh pool to collapse or the tick cap
//   - batch.go: seed derivation and the parallel map over trials
//
// # Determinism
//
// A batch is reproducible from its base seed and trial count alone. The base
// seed drives one master PCG stream (rng.go) that hands out per-trial
// sub-seeds before any trial starts; each trial then owns its own generator.
// Results are stored by trial index, independent of worker count and
// completion order.
//
// # Supporting Packages
//
//   - sim/telemetry/: Prometheus metrics for trial outcomes
//   - sim/cache/: BadgerDB dataset cache keyed on run parameters
package sim
