package sim

import (
	"fmt"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// grant identifies a waiting fan that received a slot freed by a capacity raise.
type grant struct {
	fan   int
	stage telemetry.Stage
}

// ControlPolicy is the periodic decision loop. It reads risk assessments and
// the latest snapshot, and rescales pool capacities. Capacity changes are a
// ratchet: the policy only ever increases capacity within a run.
type ControlPolicy struct {
	cfg     ControlConfig
	actions []telemetry.ControlAction
}

// NewControlPolicy creates a policy with the given thresholds and step sizes.
func NewControlPolicy(cfg ControlConfig) *ControlPolicy {
	return &ControlPolicy{cfg: cfg}
}

// Actions returns the append-only control action log.
func (p *ControlPolicy) Actions() []telemetry.ControlAction {
	return p.actions
}

// Decide evaluates the decision rules in priority order: exit congestion first,
// then entry congestion, else no action. Every triggered rule is recorded as a
// ControlAction, including ones fully clamped at a stage's maximum. Returned
// grants are waiting fans that obtained freed slots; the caller starts their
// service.
func (p *ControlPolicy) Decide(
	now int64,
	snap telemetry.Snapshot,
	entry, exit telemetry.RiskAssessment,
	pool *ResourcePool,
) (*telemetry.ControlAction, []grant) {
	exitQueue := snap.Stages[telemetry.StageExit].QueueLen
	if exitQueue > p.cfg.ExitQueueTrigger && exit.Score > p.cfg.ScoreTrigger {
		mag, step := telemetry.MagnitudeModerate, p.cfg.ExitStep
		if exit.Score >= p.cfg.StrongScore {
			mag, step = telemetry.MagnitudeStrong, p.cfg.ExitStepStrong
		}

		ch := pool.RaiseCapacity(telemetry.StageExit, step)
		grants := drainLine(pool, telemetry.StageExit)

		rationale := fmt.Sprintf("exit queue %d over trigger %d, exit risk %.2f (%s): exit gates %d->%d",
			exitQueue, p.cfg.ExitQueueTrigger, exit.Score, exit.Level, ch.Before, ch.After)
		if ch.Saturated {
			rationale += fmt.Sprintf("; exit gates saturated at max %d", pool.MaxCapacity(telemetry.StageExit))
		}

		action := telemetry.ControlAction{
			Time:      now,
			Trigger:   telemetry.RiskExit,
			Magnitude: mag,
			Score:     exit.Score,
			Changes:   []telemetry.CapacityChange{ch},
			Rationale: rationale,
		}
		p.actions = append(p.actions, action)
		return &action, grants
	}

	entryQueue := snap.EntryQueue()
	if entryQueue > p.cfg.EntryQueueTrigger && entry.Score > p.cfg.ScoreTrigger {
		mag := telemetry.MagnitudeModerate
		secStep, vendStep := p.cfg.SecurityStep, p.cfg.VendorStep
		if entry.Score >= p.cfg.StrongScore {
			mag = telemetry.MagnitudeStrong
			secStep, vendStep = p.cfg.SecurityStepStrong, p.cfg.VendorStepStrong
		}

		secCh := pool.RaiseCapacity(telemetry.StageSecurity, secStep)
		vendCh := pool.RaiseCapacity(telemetry.StageVendor, vendStep)
		grants := drainLine(pool, telemetry.StageSecurity)
		grants = append(grants, drainLine(pool, telemetry.StageVendor)...)

		rationale := fmt.Sprintf("entry queue %d over trigger %d, entry risk %.2f (%s): security lanes %d->%d, vendors %d->%d",
			entryQueue, p.cfg.EntryQueueTrigger, entry.Score, entry.Level,
			secCh.Before, secCh.After, vendCh.Before, vendCh.After)
		if secCh.Saturated {
			rationale += fmt.Sprintf("; security saturated at max %d", pool.MaxCapacity(telemetry.StageSecurity))
		}
		if vendCh.Saturated {
			rationale += fmt.Sprintf("; vendors saturated at max %d", pool.MaxCapacity(telemetry.StageVendor))
		}

		action := telemetry.ControlAction{
			Time:      now,
			Trigger:   telemetry.RiskEntry,
			Magnitude: mag,
			Score:     entry.Score,
			Changes:   []telemetry.CapacityChange{secCh, vendCh},
			Rationale: rationale,
		}
		p.actions = append(p.actions, action)
		return &action, grants
	}

	return nil, nil
}

// drainLine grants freed slots to waiting fans, head of line first.
func drainLine(pool *ResourcePool, stage telemetry.Stage) []grant {
	var grants []grant
	for {
		idx, ok := pool.grantNext(stage)
		if !ok {
			return grants
		}
		grants = append(grants, grant{fan: idx, stage: stage})
	}
}
