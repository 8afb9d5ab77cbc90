package sim

import (
	"fmt"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// stageServer is one finite-capacity server: a slot pool plus a FIFO wait line.
// Fans are referenced by arena index.
type stageServer struct {
	capacity  int
	max       int
	line      []int // waiting fan indices, FIFO, no priority jumps
	inService []int // fan indices currently holding slots
}

// ResourcePool holds every stage's server. Capacity is mutated only by the
// control policy (ratchet, clamped at max); active counts and wait lines are
// mutated only by acquire/release transitions. Both happen strictly inside the
// single-threaded event-dispatch loop.
type ResourcePool struct {
	servers [telemetry.NumStages]stageServer
}

// NewResourcePool creates a pool with the configured initial capacities and
// per-stage maxima.
func NewResourcePool(initial, max StageCaps) *ResourcePool {
	p := &ResourcePool{}
	for _, st := range telemetry.Stages {
		p.servers[st] = stageServer{
			capacity: initial.ForStage(st),
			max:      max.ForStage(st),
		}
	}
	return p
}

// Acquire requests a slot at a stage for a fan. It returns true when a slot is
// granted immediately; otherwise the fan joins the back of the wait line and
// its progress is suspended until Release grants it a slot.
func (p *ResourcePool) Acquire(stage telemetry.Stage, fanIdx int) bool {
	srv := &p.servers[stage]
	if len(srv.inService) < srv.capacity {
		srv.inService = append(srv.inService, fanIdx)
		return true
	}
	srv.line = append(srv.line, fanIdx)
	return false
}

// Release returns a fan's slot and, if the wait line is non-empty, immediately
// grants the freed slot to the head of the line. The granted fan's index is
// returned with ok=true; the caller is responsible for starting its service.
func (p *ResourcePool) Release(stage telemetry.Stage, fanIdx int) (next int, ok bool) {
	srv := &p.servers[stage]
	if !srv.removeInService(fanIdx) {
		panic(fmt.Sprintf("release at %s: fan %d holds no slot", stage, fanIdx))
	}
	return p.grantNext(stage)
}

// grantNext moves the head of the wait line into service if a slot is free.
func (p *ResourcePool) grantNext(stage telemetry.Stage) (next int, ok bool) {
	srv := &p.servers[stage]
	if len(srv.line) == 0 || len(srv.inService) >= srv.capacity {
		return 0, false
	}
	next = srv.line[0]
	srv.line = srv.line[1:]
	srv.inService = append(srv.inService, next)
	return next, true
}

func (s *stageServer) removeInService(fanIdx int) bool {
	for i, idx := range s.inService {
		if idx == fanIdx {
			s.inService = append(s.inService[:i], s.inService[i+1:]...)
			return true
		}
	}
	return false
}

// RaiseCapacity increases a stage's capacity by step, clamped at the configured
// maximum, and reports the mutation. Capacity never decreases within a run.
func (p *ResourcePool) RaiseCapacity(stage telemetry.Stage, step int) telemetry.CapacityChange {
	srv := &p.servers[stage]
	before := srv.capacity
	after := before + step
	saturated := false
	if after >= srv.max {
		after = srv.max
		saturated = true
	}
	srv.capacity = after
	return telemetry.CapacityChange{
		Stage:     stage,
		Before:    before,
		After:     after,
		Saturated: saturated,
	}
}

// Capacity returns a stage's current slot count.
func (p *ResourcePool) Capacity(stage telemetry.Stage) int {
	return p.servers[stage].capacity
}

// MaxCapacity returns a stage's configured maximum.
func (p *ResourcePool) MaxCapacity(stage telemetry.Stage) int {
	return p.servers[stage].max
}

// Active returns the number of slots currently serving at a stage.
func (p *ResourcePool) Active(stage telemetry.Stage) int {
	return len(p.servers[stage].inService)
}

// QueueLen returns the number of fans waiting at a stage.
func (p *ResourcePool) QueueLen(stage telemetry.Stage) int {
	return len(p.servers[stage].line)
}

// waiting and serving expose the stage's fan indices to the metrics collector.
// The returned slices are internal storage; callers must not mutate them.
func (p *ResourcePool) waiting(stage telemetry.Stage) []int {
	return p.servers[stage].line
}

func (p *ResourcePool) serving(stage telemetry.Stage) []int {
	return p.servers[stage].inService
}

// capacities returns all current capacities, indexed by stage.
func (p *ResourcePool) capacities() [telemetry.NumStages]int {
	var out [telemetry.NumStages]int
	for _, st := range telemetry.Stages {
		out[st] = p.servers[st].capacity
	}
	return out
}
