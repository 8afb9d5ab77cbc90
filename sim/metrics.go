package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// MetricsCollector samples system state on a fixed cadence into an append-only,
// gap-free telemetry log, and accumulates realized per-stage waits for the run
// summary. Snapshots are never revised after recording.
type MetricsCollector struct {
	intervalTicks int64
	snapshots     []telemetry.Snapshot
	waits         [telemetry.NumStages][]float64

	prevArrived  int
	prevDeparted int
}

func newMetricsCollector(intervalTicks int64) *MetricsCollector {
	return &MetricsCollector{intervalTicks: intervalTicks}
}

// Snapshots returns the ordered telemetry log.
func (c *MetricsCollector) Snapshots() []telemetry.Snapshot {
	return c.snapshots
}

// recordWait logs one fan's realized wait (minutes) at a stage, at the moment
// it acquires a slot.
func (c *MetricsCollector) recordWait(stage telemetry.Stage, minutes float64) {
	c.waits[stage] = append(c.waits[stage], minutes)
}

// sample captures one snapshot of the live system. Mean wait per stage covers
// fans currently waiting (elapsed so far) and in service (realized wait).
func (c *MetricsCollector) sample(s *Simulator, now int64) {
	snap := telemetry.Snapshot{
		Time:     now,
		Phase:    PhaseAt(now, s.cfg.kickoffTicks(), s.cfg.matchEndTicks()),
		Arrived:  s.arrived,
		Departed: s.departed,
	}

	for _, st := range telemetry.Stages {
		sample := telemetry.StageSample{
			QueueLen: s.Pool.QueueLen(st),
			Active:   s.Pool.Active(st),
			Capacity: s.Pool.Capacity(st),
		}
		if sample.Capacity > 0 {
			sample.Utilization = float64(sample.Active) / float64(sample.Capacity)
		}

		total := 0.0
		n := 0
		for _, idx := range s.Pool.waiting(st) {
			fan := s.arena.at(idx)
			total += float64(now-fan.StageEnter[st]) / float64(TicksPerMinute)
			n++
		}
		for _, idx := range s.Pool.serving(st) {
			total += s.arena.at(idx).waitMinutes(st)
			n++
		}
		if n > 0 {
			sample.MeanWaitMin = total / float64(n)
		}
		snap.Stages[st] = sample
	}

	inside := 0
	for i := range s.arena.fans {
		if s.arena.fans[i].State == StateInside {
			inside++
		}
	}
	snap.Inside = inside

	intervalMin := float64(c.intervalTicks) / float64(TicksPerMinute)
	snap.ArrivalRate = float64(s.arrived-c.prevArrived) / intervalMin
	snap.ExitRate = float64(s.departed-c.prevDeparted) / intervalMin
	c.prevArrived = s.arrived
	c.prevDeparted = s.departed

	c.snapshots = append(c.snapshots, snap)

	logrus.Debugf("[tick %07d] sample: arrived=%d inside=%d departed=%d secQ=%d gateQ=%d exitQ=%d",
		now, snap.Arrived, snap.Inside, snap.Departed,
		snap.Stages[telemetry.StageSecurity].QueueLen,
		snap.Stages[telemetry.StageTurnstile].QueueLen,
		snap.Stages[telemetry.StageExit].QueueLen)
}
