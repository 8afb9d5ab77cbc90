// Package risk scores congestion risk from telemetry snapshots.
//
// Scorers are pure functions over their input: no internal mutable state beyond
// fixed configuration, so identical inputs always yield identical assessments.
// Three interchangeable implementations satisfy the same contract: rule-based,
// model-backed, and a hybrid blend.
package risk

import (
	"fmt"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// WindowSize is the number of trailing snapshots a scorer uses for trend projection.
const WindowSize = 5

// Thresholds holds the normalization constants and term weights for scoring.
// Constructed once at configuration time and passed by value into scorers;
// there is no process-wide mutable threshold state.
type Thresholds struct {
	EntryQueueCritical   int     `yaml:"entry_queue_critical" json:"entry_queue_critical"`
	EntryWaitCriticalMin float64 `yaml:"entry_wait_critical_min" json:"entry_wait_critical_min"`
	ExitQueueCritical    int     `yaml:"exit_queue_critical" json:"exit_queue_critical"`
	ExitWaitCriticalMin  float64 `yaml:"exit_wait_critical_min" json:"exit_wait_critical_min"`

	QueueWeight float64 `yaml:"queue_weight" json:"queue_weight"`
	WaitWeight  float64 `yaml:"wait_weight" json:"wait_weight"`
	PhaseWeight float64 `yaml:"phase_weight" json:"phase_weight"`
}

// DefaultThresholds returns the calibration used for a full-capacity venue.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EntryQueueCritical:   5000,
		EntryWaitCriticalMin: 25,
		ExitQueueCritical:    3000,
		ExitWaitCriticalMin:  20,
		QueueWeight:          0.40,
		WaitWeight:           0.45,
		PhaseWeight:          0.15,
	}
}

// Validate reports the first malformed threshold, or nil.
func (t Thresholds) Validate() error {
	if t.EntryQueueCritical <= 0 || t.ExitQueueCritical <= 0 {
		return fmt.Errorf("queue critical thresholds must be positive, got entry=%d exit=%d",
			t.EntryQueueCritical, t.ExitQueueCritical)
	}
	if t.EntryWaitCriticalMin <= 0 || t.ExitWaitCriticalMin <= 0 {
		return fmt.Errorf("wait critical thresholds must be positive, got entry=%.2f exit=%.2f",
			t.EntryWaitCriticalMin, t.ExitWaitCriticalMin)
	}
	if t.QueueWeight < 0 || t.WaitWeight < 0 || t.PhaseWeight < 0 {
		return fmt.Errorf("term weights must be non-negative")
	}
	if t.QueueWeight+t.WaitWeight <= 0 {
		return fmt.Errorf("queue and wait weights must not both be zero")
	}
	return nil
}

// Input bundles everything a scorer may look at for one assessment.
// Window holds trailing snapshots strictly before Latest, oldest first;
// it may be shorter than WindowSize early in a run.
type Input struct {
	Now              int64 // current tick
	SamplingInterval int64 // ticks between snapshots
	Kickoff          int64 // tick of kickoff
	MatchEnd         int64 // tick of full time
	Latest           telemetry.Snapshot
	Window           []telemetry.Snapshot
}

// Scorer produces independent entry and exit assessments from one input.
// Implementations must be deterministic: repeated invocation with identical
// inputs yields bit-identical outputs.
type Scorer interface {
	Score(in Input) (entry, exit telemetry.RiskAssessment)
}

const ticksPerMinute = 60

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// norm maps v onto [0,1] against its critical threshold.
func norm(v, critical float64) float64 {
	if critical <= 0 {
		return 0
	}
	return clamp01(v / critical)
}

// entryQueueGrowth returns the entry queue's recent growth rate in fans per minute,
// measured across the trend window and the latest snapshot. Zero when the window
// is empty or spans no time.
func entryQueueGrowth(in Input) float64 {
	if len(in.Window) == 0 {
		return 0
	}
	oldest := in.Window[0]
	spanTicks := in.Latest.Time - oldest.Time
	if spanTicks <= 0 {
		return 0
	}
	deltaFans := float64(in.Latest.EntryQueue() - oldest.EntryQueue())
	return deltaFans / (float64(spanTicks) / ticksPerMinute)
}

// timeToCritical linearly extrapolates the entry queue's growth to the tick it
// would cross the critical queue size. Absent (false) when growth is non-positive
// or the queue is already at or past critical.
func timeToCritical(in Input, critical int) (float64, bool) {
	growth := entryQueueGrowth(in)
	if growth <= 0 {
		return 0, false
	}
	headroom := float64(critical - in.Latest.EntryQueue())
	if headroom <= 0 {
		return 0, true
	}
	return headroom / growth, true
}

// confidence is a deterministic function of snapshot recency and trend window
// completeness, capped at 0.95.
func confidence(in Input) float64 {
	completeness := float64(len(in.Window)) / float64(WindowSize)
	if completeness > 1 {
		completeness = 1
	}
	base := 0.45 + 0.5*completeness

	recency := 1.0
	if age := in.Now - in.Latest.Time; age > in.SamplingInterval && in.SamplingInterval > 0 {
		recency = float64(in.SamplingInterval) / float64(age)
	}

	conf := base * recency
	if conf > 0.95 {
		conf = 0.95
	}
	return clamp01(conf)
}

// buildAssessment assembles the full assessment record for a final score.
// PredictedWait and PredictedQueue inflate the observed values by the score,
// mirroring the calibration of the trained queue model.
func buildAssessment(t Thresholds, in Input, typ telemetry.RiskType, score, waitMin float64, queue int) telemetry.RiskAssessment {
	a := telemetry.RiskAssessment{
		Type:             typ,
		Score:            score,
		Level:            telemetry.LevelForScore(score),
		PredictedWaitMin: waitMin * (1 + 0.5*score),
		PredictedQueue:   int(float64(queue) * (1 + 0.3*score)),
		Confidence:       confidence(in),
	}
	if typ == telemetry.RiskEntry {
		if ttc, ok := timeToCritical(in, t.EntryQueueCritical); ok {
			a.TimeToCriticalMin = ttc
			a.HasTimeToCritical = true
		}
	}
	return a
}
