// Package telemetry provides the pure data types recorded during a simulation run.
// This package has no dependencies on sim/ or sim/risk/ — it stores immutable records
// that form the run's observable history.
package telemetry

// Stage identifies one queueing checkpoint a fan passes through.
type Stage int

const (
	StageSecurity Stage = iota
	StageTurnstile
	StageVendor
	StageExit

	numStages
)

// NumStages is the number of queueing stages in the venue.
const NumStages = int(numStages)

// Stages lists all stages in traversal order.
var Stages = [NumStages]Stage{StageSecurity, StageTurnstile, StageVendor, StageExit}

func (s Stage) String() string {
	switch s {
	case StageSecurity:
		return "security"
	case StageTurnstile:
		return "turnstile"
	case StageVendor:
		return "vendor"
	case StageExit:
		return "exit"
	}
	return "unknown"
}
