package sim

import (
	"fmt"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// FanState is one node of the per-fan state machine:
//
//	Arrived → AtSecurity → AtTurnstile → Inside → [AtVendor]* → AtExit → Departed
//
// AtVendor interleaves with Inside zero or more times and never blocks the
// forward sequence. Departed is terminal.
type FanState int

const (
	StateArrived FanState = iota
	StateAtSecurity
	StateAtTurnstile
	StateInside
	StateAtVendor
	StateAtExit
	StateDeparted
)

func (s FanState) String() string {
	switch s {
	case StateArrived:
		return "arrived"
	case StateAtSecurity:
		return "at_security"
	case StateAtTurnstile:
		return "at_turnstile"
	case StateInside:
		return "inside"
	case StateAtVendor:
		return "at_vendor"
	case StateAtExit:
		return "at_exit"
	case StateDeparted:
		return "departed"
	}
	return "unknown"
}

// stateForStage maps a queueing stage to the state a fan holds while at it.
func stateForStage(stage telemetry.Stage) FanState {
	switch stage {
	case telemetry.StageSecurity:
		return StateAtSecurity
	case telemetry.StageTurnstile:
		return StateAtTurnstile
	case telemetry.StageVendor:
		return StateAtVendor
	case telemetry.StageExit:
		return StateAtExit
	}
	panic(fmt.Sprintf("stateForStage: unknown stage %d", stage))
}

// FanAgent is one fan traversing the venue. Agents live in a fanArena and are
// addressed by index; all mutation happens inside dispatched event handlers.
type FanAgent struct {
	ID          int
	ArrivalTime int64
	State       FanState

	// Per-stage timestamps. For the vendor stage, repeated visits overwrite
	// the previous visit's values; VendorVisits counts them.
	StageEnter   [telemetry.NumStages]int64
	ServiceStart [telemetry.NumStages]int64
	StageExit    [telemetry.NumStages]int64

	EnteredVenueAt int64
	VendorVisits   int

	// ExitReleased is set by the exit-demand generator; the fan heads to the
	// exit stage at the next opportunity instead of dwelling further.
	ExitReleased bool
	Terminal     bool
}

// legalTransition encodes the strictly forward stage sequence, with the
// Inside <-> AtVendor interleave as the only permitted loop.
func legalTransition(from, to FanState) bool {
	switch to {
	case StateAtSecurity:
		return from == StateArrived
	case StateAtTurnstile:
		return from == StateAtSecurity
	case StateInside:
		return from == StateAtTurnstile || from == StateAtVendor
	case StateAtVendor:
		return from == StateInside
	case StateAtExit:
		return from == StateInside || from == StateAtVendor
	case StateDeparted:
		return from == StateAtExit
	}
	return false
}

// transition moves the fan to the next state. An illegal transition or any
// mutation after the terminal state is an internal logic defect.
func (f *FanAgent) transition(to FanState) {
	if f.Terminal {
		panic(fmt.Sprintf("fan %d: transition to %s after terminal state", f.ID, to))
	}
	if !legalTransition(f.State, to) {
		panic(fmt.Sprintf("fan %d: illegal transition %s -> %s", f.ID, f.State, to))
	}
	f.State = to
}

// enterStage records the fan joining a stage's wait line at the given tick.
func (f *FanAgent) enterStage(stage telemetry.Stage, now int64) {
	f.transition(stateForStage(stage))
	f.StageEnter[stage] = now
	if stage == telemetry.StageVendor {
		f.VendorVisits++
	}
}

// beginService records the fan acquiring a slot at the given tick.
func (f *FanAgent) beginService(stage telemetry.Stage, now int64) {
	f.ServiceStart[stage] = now
}

// leaveStage records service completion at the given tick.
func (f *FanAgent) leaveStage(stage telemetry.Stage, now int64) {
	f.StageExit[stage] = now
}

// enterVenue marks the fan as dwelling inside.
func (f *FanAgent) enterVenue(now int64) {
	f.transition(StateInside)
	if f.EnteredVenueAt == 0 {
		f.EnteredVenueAt = now
	}
}

// depart marks the fan terminal. No further mutation is permitted.
func (f *FanAgent) depart() {
	f.transition(StateDeparted)
	f.Terminal = true
}

// waitMinutes returns the realized wait at a stage in minutes: time between
// joining the line and acquiring a slot.
func (f *FanAgent) waitMinutes(stage telemetry.Stage) float64 {
	return float64(f.ServiceStart[stage]-f.StageEnter[stage]) / float64(TicksPerMinute)
}

// fanArena is index-addressable storage for all fan agents in a run.
// Capacity is reserved up front so indices stay stable for the whole run.
type fanArena struct {
	fans []FanAgent
}

func newFanArena(capacity int) *fanArena {
	return &fanArena{fans: make([]FanAgent, 0, capacity)}
}

// add creates a new fan in the Arrived state and returns its index.
func (a *fanArena) add(now int64) int {
	idx := len(a.fans)
	a.fans = append(a.fans, FanAgent{
		ID:          idx,
		ArrivalTime: now,
		State:       StateArrived,
	})
	return idx
}

// at returns the fan at the given index. The pointer stays valid because the
// arena never reallocates after construction.
func (a *fanArena) at(idx int) *FanAgent {
	return &a.fans[idx]
}

func (a *fanArena) len() int {
	return len(a.fans)
}
