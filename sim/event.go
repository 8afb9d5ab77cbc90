package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in ticks) and an Execute method that advances
// simulation state when invoked. Dispatch is single-threaded and cooperative;
// a handler is never preempted.
type Event interface {
	Timestamp() int64
	Execute(*Simulator)
}

// ArrivalEvent spawns one fan and schedules the next arrival from the
// phase-dependent rate. The chain stops exactly at the fan-count target.
type ArrivalEvent struct {
	time int64
}

func (e *ArrivalEvent) Timestamp() int64 { return e.time }

func (e *ArrivalEvent) Execute(sim *Simulator) {
	if sim.arrivals.done() {
		return
	}
	idx := sim.spawnFan(e.time)
	logrus.Debugf("<< Arrival: fan %d at %d ticks", idx, e.time)

	if !sim.arrivals.done() {
		gap := sim.arrivals.nextGap(e.time, sim.rng.ForSubsystem(SubsystemArrivals))
		sim.mustSchedule(&ArrivalEvent{time: e.time + gap})
	}
}

// ServiceDoneEvent fires when a fan's service at a stage expires.
type ServiceDoneEvent struct {
	time  int64
	fan   int
	stage telemetry.Stage
}

func (e *ServiceDoneEvent) Timestamp() int64 { return e.time }

func (e *ServiceDoneEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< ServiceDone: fan %d at %s, %d ticks", e.fan, e.stage, e.time)
	sim.serviceDone(e.fan, e.stage, e.time)
}

// VendorVisitEvent fires when a dwelling fan decides to head to a concession
// stand. Skipped if the fan has been released toward the exit in the meantime.
type VendorVisitEvent struct {
	time int64
	fan  int
}

func (e *VendorVisitEvent) Timestamp() int64 { return e.time }

func (e *VendorVisitEvent) Execute(sim *Simulator) {
	fan := sim.arena.at(e.fan)
	if fan.Terminal || fan.ExitReleased || fan.State != StateInside {
		return
	}
	logrus.Debugf("<< VendorVisit: fan %d at %d ticks", e.fan, e.time)
	sim.requestStage(e.fan, telemetry.StageVendor, e.time)
}

// MatchEndEvent marks full time and activates the exit-demand generator.
type MatchEndEvent struct {
	time int64
}

func (e *MatchEndEvent) Timestamp() int64 { return e.time }

func (e *MatchEndEvent) Execute(sim *Simulator) {
	logrus.Infof("[tick %07d] Match ended, exit flow starting", e.time)
	gap := sim.exits.nextGap(e.time, sim.remainingToRelease(), sim.rng.ForSubsystem(SubsystemExits))
	sim.mustSchedule(&ExitReleaseEvent{time: e.time + gap})
}

// ExitReleaseEvent releases the longest-dwelling fan toward the exit stage and
// schedules the next release. The generator only releases agents already
// inside; it never creates new ones.
type ExitReleaseEvent struct {
	time int64
}

func (e *ExitReleaseEvent) Timestamp() int64 { return e.time }

func (e *ExitReleaseEvent) Execute(sim *Simulator) {
	sim.releaseNextFan(e.time)
	if sim.arrivals.done() && sim.exits.released >= sim.arrived {
		return
	}
	gap := sim.exits.nextGap(e.time, sim.remainingToRelease(), sim.rng.ForSubsystem(SubsystemExits))
	sim.mustSchedule(&ExitReleaseEvent{time: e.time + gap})
}

// MetricsTickEvent emits one telemetry snapshot and, on control cadence
// boundaries, runs the control policy strictly after the sample.
type MetricsTickEvent struct {
	time int64
}

func (e *MetricsTickEvent) Timestamp() int64 { return e.time }

func (e *MetricsTickEvent) Execute(sim *Simulator) {
	sim.Collector.sample(sim, e.time)

	if sim.cfg.AdaptiveControl && e.time > 0 && e.time%sim.cfg.controlTicks() == 0 {
		sim.runControl(e.time)
	}

	next := e.time + sim.cfg.samplingTicks()
	if next > sim.Horizon {
		return
	}
	if sim.cfg.TerminateOnDrain && sim.drained() {
		return
	}
	sim.mustSchedule(&MetricsTickEvent{time: next})
}
