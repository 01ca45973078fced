// Package sim implements the fixed-step N-body engine.
//
// Each [Engine.Step] runs a semi-implicit Euler update over all pairs:
//
//  1. emit a [Snapshot] to every [Sink] when the step index falls on the
//     snapshot cadence
//  2. sum pairwise gravitational velocity adjustments from start-of-step
//     positions and apply them once per body
//  3. advance positions using the updated velocities
//  4. merge bodies whose positions coincide exactly, each unordered pair
//     visited once
//
// # Degenerate Pairs
//
// Two live bodies at the same position before the force pass would divide by
// zero. The pair is skipped for that step and reported as a
// [DegenerateEvent]; non-finite state afterwards is reported as
// [ErrInvalidState] when [Config.ValidateState] is set.
//
// # Thread Safety
//
// An Engine is not safe for concurrent use. [Config.Workers] fans the force
// pass out over goroutines; every body's accumulator is owned by a single
// worker and velocities are written only after all workers finish.
package sim
