// Package sim provides the core discrete-event simulation engine for stadium
// crowd flow on match day.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - fan.go: FanAgent lifecycle (arrived → security → turnstile → inside → exit) and state machine
//   - event.go: Event types that drive the simulation (Arrival, ServiceDone, ExitRelease, etc.)
//   - simulator.go: The event loop, stage routing, and the control hook
//
// # Architecture
//
// The sim package owns the kernel and the queueing model; pure leaf concerns
// live in sub-packages:
//   - sim/telemetry/: snapshot, assessment, and summary record types (no sim dependency)
//   - sim/risk/: pure scorers that map snapshot windows to risk assessments
//
// Time is a logical clock in ticks (one tick is one second); configuration is
// expressed in minutes and converted at the boundary. All randomness flows
// through a PartitionedRNG keyed by the run seed, so two runs with identical
// configuration produce identical event sequences, snapshots, and actions.
//
// # Key Interfaces
//
// The extension point is small by design:
//   - risk.Scorer: independent entry and exit assessments from a snapshot window
//
// ControlPolicy consumes the assessments and rescales ResourcePool capacities;
// capacity moves up only, never down.
package sim
