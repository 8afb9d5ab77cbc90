package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

func TestFanAgent_ForwardSequence(t *testing.T) {
	// GIVEN a newly arrived fan
	arena := newFanArena(4)
	fan := arena.at(arena.add(100))
	require.Equal(t, StateArrived, fan.State)

	// WHEN it traverses the full forward sequence with one vendor interleave
	fan.enterStage(telemetry.StageSecurity, 100)
	fan.beginService(telemetry.StageSecurity, 110)
	fan.leaveStage(telemetry.StageSecurity, 120)
	fan.enterStage(telemetry.StageTurnstile, 120)
	fan.leaveStage(telemetry.StageTurnstile, 130)
	fan.enterVenue(130)
	fan.enterStage(telemetry.StageVendor, 500)
	fan.leaveStage(telemetry.StageVendor, 560)
	fan.enterVenue(560)
	fan.enterStage(telemetry.StageExit, 20000)
	fan.leaveStage(telemetry.StageExit, 20010)
	fan.depart()

	// THEN it ends terminal with its history recorded
	assert.Equal(t, StateDeparted, fan.State)
	assert.True(t, fan.Terminal)
	assert.Equal(t, 1, fan.VendorVisits)
	assert.Equal(t, int64(130), fan.EnteredVenueAt)
}

func TestFanAgent_EnteredVenueAt_KeepsFirstEntry(t *testing.T) {
	// GIVEN a fan inside since tick 130
	arena := newFanArena(1)
	fan := arena.at(arena.add(0))
	fan.enterStage(telemetry.StageSecurity, 0)
	fan.leaveStage(telemetry.StageSecurity, 10)
	fan.enterStage(telemetry.StageTurnstile, 10)
	fan.leaveStage(telemetry.StageTurnstile, 20)
	fan.enterVenue(130)

	// WHEN it returns from a vendor visit much later
	fan.enterStage(telemetry.StageVendor, 1000)
	fan.leaveStage(telemetry.StageVendor, 1100)
	fan.enterVenue(1100)

	// THEN the original venue-entry time is preserved
	assert.Equal(t, int64(130), fan.EnteredVenueAt)
}

func TestFanAgent_IllegalTransition_Panics(t *testing.T) {
	// GIVEN a newly arrived fan
	arena := newFanArena(1)
	fan := arena.at(arena.add(0))

	// WHEN it tries to skip security entirely
	// THEN the state machine panics: the sequence is strictly forward
	assert.Panics(t, func() { fan.transition(StateInside) })
	assert.Panics(t, func() { fan.enterStage(telemetry.StageExit, 0) })
}

func TestFanAgent_MutationAfterTerminal_Panics(t *testing.T) {
	// GIVEN a departed fan
	arena := newFanArena(1)
	fan := arena.at(arena.add(0))
	fan.enterStage(telemetry.StageSecurity, 0)
	fan.leaveStage(telemetry.StageSecurity, 1)
	fan.enterStage(telemetry.StageTurnstile, 1)
	fan.leaveStage(telemetry.StageTurnstile, 2)
	fan.enterVenue(2)
	fan.enterStage(telemetry.StageExit, 3)
	fan.leaveStage(telemetry.StageExit, 4)
	fan.depart()

	// WHEN any further transition is attempted
	// THEN it panics
	assert.Panics(t, func() { fan.transition(StateInside) })
}

func TestFanAgent_WaitMinutes(t *testing.T) {
	// GIVEN a fan that queued at security for 90 ticks
	arena := newFanArena(1)
	fan := arena.at(arena.add(0))
	fan.enterStage(telemetry.StageSecurity, 100)
	fan.beginService(telemetry.StageSecurity, 190)

	// THEN the realized wait is 1.5 minutes
	assert.InDelta(t, 1.5, fan.waitMinutes(telemetry.StageSecurity), 1e-9)
}

func TestFanArena_IndicesAreStable(t *testing.T) {
	// GIVEN an arena sized for the whole run
	arena := newFanArena(3)
	first := arena.add(0)
	ptr := arena.at(first)

	// WHEN more fans are added up to capacity
	arena.add(1)
	arena.add(2)

	// THEN earlier pointers remain valid and IDs match indices
	assert.Same(t, ptr, arena.at(first))
	assert.Equal(t, 3, arena.len())
	assert.Equal(t, 2, arena.at(2).ID)
}
