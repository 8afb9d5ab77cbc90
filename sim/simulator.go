package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"

	"github.com/stadium-sim/stadium-sim/sim/risk"
	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// Simulator is the core object that holds simulation time, system state, and
// the event loop. All state mutation happens inside dispatched event handlers;
// there is no other suspension or resumption mechanism.
type Simulator struct {
	Clock   int64
	Horizon int64

	cfg Config
	rng *PartitionedRNG

	events eventQueue
	seq    uint64

	Pool      *ResourcePool
	Collector *MetricsCollector
	Policy    *ControlPolicy

	arena    *fanArena
	scorer   risk.Scorer
	arrivals *ArrivalGenerator
	exits    *ExitGenerator
	services [telemetry.NumStages]serviceSampler

	// insideOrder lists fan indices in venue-entry order; exitCursor tracks
	// the next release candidate.
	insideOrder []int
	exitCursor  int

	arrived   int
	departed  int
	anomalies int
}

// NewSimulator validates the configuration and builds a ready-to-run simulator
// with the bootstrap events scheduled. A ConfigurationError aborts before any
// event is scheduled.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scorer, err := newScorer(cfg)
	if err != nil {
		return nil, &ConfigurationError{Field: "scorer", Reason: err.Error()}
	}

	s := &Simulator{
		Horizon:   cfg.horizonTicks(),
		cfg:       cfg,
		rng:       NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		events:    make(eventQueue, 0),
		Pool:      NewResourcePool(cfg.InitialCapacity, cfg.MaxCapacity),
		Collector: newMetricsCollector(cfg.samplingTicks()),
		Policy:    NewControlPolicy(cfg.Control),
		arena:     newFanArena(cfg.FanCount),
		scorer:    scorer,
		arrivals:  newArrivalGenerator(cfg),
		exits:     newExitGenerator(cfg),
	}
	for _, st := range telemetry.Stages {
		s.services[st] = serviceSampler{cfg: cfg.ServiceTimes[st]}
	}

	s.mustSchedule(&MetricsTickEvent{time: 0})
	if cfg.FanCount > 0 {
		first := s.arrivals.nextGap(0, s.rng.ForSubsystem(SubsystemArrivals))
		s.mustSchedule(&ArrivalEvent{time: first})
		s.mustSchedule(&MatchEndEvent{time: cfg.matchEndTicks()})
	}
	return s, nil
}

func newScorer(cfg Config) (risk.Scorer, error) {
	switch cfg.Scorer {
	case ScorerModel:
		return risk.NewModelScorer(cfg.Risk, cfg.ModelWeights)
	case ScorerHybrid:
		return risk.NewHybridScorer(cfg.Risk, cfg.ModelWeights, cfg.HybridBlend)
	}
	return risk.NewRuleScorer(cfg.Risk), nil
}

// Run executes one complete simulation: validate the configuration, dispatch
// events in timestamp order (insertion order on ties) until no event remains
// or the horizon is exceeded, and assemble the run's observable record.
// Synchronous, with no side effects beyond the returned value.
func Run(cfg Config) (*SimulationResult, error) {
	s, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(), nil
}

// Schedule inserts an event into the queue. Scheduling strictly in the past
// returns an InvalidScheduleError; that is an internal defect and is never
// retried.
func (s *Simulator) Schedule(ev Event) error {
	if ev.Timestamp() < s.Clock {
		return &InvalidScheduleError{Clock: s.Clock, Timestamp: ev.Timestamp()}
	}
	s.seq++
	heap.Push(&s.events, scheduledEvent{ev: ev, seq: s.seq})
	return nil
}

// mustSchedule is for internal handlers, where a past timestamp can only be a
// logic defect.
func (s *Simulator) mustSchedule(ev Event) {
	if err := s.Schedule(ev); err != nil {
		panic(err)
	}
}

// Run drives the event loop and returns the simulation result.
func (s *Simulator) Run() *SimulationResult {
	logrus.Infof("Starting simulation: %d fans, kickoff=%dmin, horizon=%dmin, adaptive=%v, seed=%d",
		s.cfg.FanCount, s.cfg.KickoffMin, s.cfg.HorizonMin, s.cfg.AdaptiveControl, s.cfg.Seed)

	for len(s.events) > 0 {
		ent := heap.Pop(&s.events).(scheduledEvent)
		if ent.ev.Timestamp() > s.Horizon {
			// Truncated by horizon; metrics up to this point stay consistent.
			s.Clock = s.Horizon
			break
		}
		s.Clock = ent.ev.Timestamp()
		logrus.Debugf("[tick %07d] Executing %T", s.Clock, ent.ev)
		ent.ev.Execute(s)
	}

	logrus.Infof("[tick %07d] Simulation ended: arrived=%d departed=%d anomalies=%d",
		s.Clock, s.arrived, s.departed, s.anomalies)

	return s.buildResult()
}

// drained reports whether the arrival target is exhausted and every spawned
// fan has departed.
func (s *Simulator) drained() bool {
	return s.arrivals.done() && s.departed == s.arrived
}

// remainingToRelease counts spawned fans the exit generator has not yet released.
func (s *Simulator) remainingToRelease() int {
	return s.arrived - s.exits.released
}

// === Fan lifecycle ===

func (s *Simulator) spawnFan(now int64) int {
	idx := s.arena.add(now)
	s.arrived++
	s.arrivals.generated++
	s.requestStage(idx, telemetry.StageSecurity, now)
	return idx
}

// requestStage moves a fan into a stage's line, starting service immediately
// when a slot is free.
func (s *Simulator) requestStage(idx int, stage telemetry.Stage, now int64) {
	s.arena.at(idx).enterStage(stage, now)
	if s.Pool.Acquire(stage, idx) {
		s.startService(idx, stage, now)
	}
}

// startService samples a service duration for a fan that just obtained a slot
// and schedules its completion.
func (s *Simulator) startService(idx int, stage telemetry.Stage, now int64) {
	fan := s.arena.at(idx)
	fan.beginService(stage, now)
	s.Collector.recordWait(stage, fan.waitMinutes(stage))

	dur, anomaly := s.services[stage].sampleTicks(s.rng.ForSubsystem(SubsystemService(stage)))
	if anomaly {
		s.anomalies++
		logrus.Debugf("[tick %07d] negative service sample at %s clamped to zero", now, stage)
	}
	s.mustSchedule(&ServiceDoneEvent{time: now + dur, fan: idx, stage: stage})
}

// serviceDone releases the fan's slot, grants it to the head of the wait line,
// and advances the fan through the stage chain.
func (s *Simulator) serviceDone(idx int, stage telemetry.Stage, now int64) {
	fan := s.arena.at(idx)
	fan.leaveStage(stage, now)

	if next, ok := s.Pool.Release(stage, idx); ok {
		s.startService(next, stage, now)
	}

	switch stage {
	case telemetry.StageSecurity:
		s.requestStage(idx, telemetry.StageTurnstile, now)
	case telemetry.StageTurnstile:
		s.enterVenue(idx, now)
	case telemetry.StageVendor:
		s.afterVendor(idx, now)
	case telemetry.StageExit:
		s.departFan(idx)
	}
}

func (s *Simulator) enterVenue(idx int, now int64) {
	s.arena.at(idx).enterVenue(now)
	s.insideOrder = append(s.insideOrder, idx)
	s.maybePlanVendor(idx, now)
}

// afterVendor routes a fan leaving a concession stand: to the exit when it has
// been released in the meantime, otherwise back inside.
func (s *Simulator) afterVendor(idx int, now int64) {
	fan := s.arena.at(idx)
	if fan.ExitReleased {
		s.requestStage(idx, telemetry.StageExit, now)
		return
	}
	fan.enterVenue(now)
	s.maybePlanVendor(idx, now)
}

// maybePlanVendor schedules a future concession visit with the configured
// probability. Visits interleave with dwelling and never block the forward
// stage sequence.
func (s *Simulator) maybePlanVendor(idx int, now int64) {
	rng := s.rng.ForSubsystem(SubsystemBehavior)
	if rng.Float64() >= s.cfg.VendorVisitProb {
		return
	}
	delayMin := 2 + rng.Float64()*28
	delay := int64(delayMin * float64(TicksPerMinute))
	s.mustSchedule(&VendorVisitEvent{time: now + delay, fan: idx})
}

// releaseNextFan releases the longest-dwelling unreleased fan toward the exit.
// A fan mid-vendor-visit is flagged and heads to the exit once its service
// completes. Returns false when nobody is currently eligible.
func (s *Simulator) releaseNextFan(now int64) bool {
	for s.exitCursor < len(s.insideOrder) {
		idx := s.insideOrder[s.exitCursor]
		fan := s.arena.at(idx)
		if fan.ExitReleased {
			s.exitCursor++
			continue
		}
		fan.ExitReleased = true
		s.exits.released++
		s.exitCursor++
		if fan.State == StateInside {
			s.requestStage(idx, telemetry.StageExit, now)
		}
		return true
	}
	return false
}

func (s *Simulator) departFan(idx int) {
	s.arena.at(idx).depart()
	s.departed++
}

// === Control loop ===

// runControl scores the latest snapshot and applies the control policy.
// It runs strictly after the co-timed metrics sample.
func (s *Simulator) runControl(now int64) {
	snaps := s.Collector.Snapshots()
	if len(snaps) == 0 {
		return
	}
	latest := snaps[len(snaps)-1]
	start := len(snaps) - 1 - risk.WindowSize
	if start < 0 {
		start = 0
	}

	in := risk.Input{
		Now:              now,
		SamplingInterval: s.cfg.samplingTicks(),
		Kickoff:          s.cfg.kickoffTicks(),
		MatchEnd:         s.cfg.matchEndTicks(),
		Latest:           latest,
		Window:           snaps[start : len(snaps)-1],
	}
	entry, exit := s.scorer.Score(in)

	action, grants := s.Policy.Decide(now, latest, entry, exit, s.Pool)
	if action == nil {
		return
	}
	for _, g := range grants {
		s.startService(g.fan, g.stage, now)
	}
	logrus.Infof("[tick %07d] control action (%s %s): %s", now, action.Trigger, action.Magnitude, action.Rationale)
}
