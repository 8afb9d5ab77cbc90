package risk

import (
	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// RuleScorer combines normalized queue, wait, and phase pressure terms via a
// weighted sum clamped to [0,1].
type RuleScorer struct {
	t Thresholds
}

// NewRuleScorer creates a rule-based scorer with the given thresholds.
func NewRuleScorer(t Thresholds) *RuleScorer {
	return &RuleScorer{t: t}
}

func (s *RuleScorer) Score(in Input) (entry, exit telemetry.RiskAssessment) {
	entryQueue := in.Latest.EntryQueue()
	entryWait := in.Latest.EntryWaitMin()
	entryScore := clamp01(
		s.t.QueueWeight*norm(float64(entryQueue), float64(s.t.EntryQueueCritical)) +
			s.t.WaitWeight*norm(entryWait, s.t.EntryWaitCriticalMin) +
			s.t.PhaseWeight*entryPhasePressure(in))
	entry = buildAssessment(s.t, in, telemetry.RiskEntry, entryScore, entryWait, entryQueue)

	exitQueue := in.Latest.Stages[telemetry.StageExit].QueueLen
	exitWait := in.Latest.Stages[telemetry.StageExit].MeanWaitMin
	exitScore := clamp01(
		s.t.QueueWeight*norm(float64(exitQueue), float64(s.t.ExitQueueCritical)) +
			s.t.WaitWeight*norm(exitWait, s.t.ExitWaitCriticalMin) +
			s.t.PhaseWeight*exitPhasePressure(in))
	exit = buildAssessment(s.t, in, telemetry.RiskExit, exitScore, exitWait, exitQueue)

	return entry, exit
}

// entryPhasePressure rises as kickoff approaches: latecomers have no slack,
// so the same queue is worse close to kickoff.
func entryPhasePressure(in Input) float64 {
	if in.Now >= in.Kickoff {
		return 0
	}
	remainingMin := float64(in.Kickoff-in.Now) / ticksPerMinute
	switch {
	case remainingMin < 30:
		return 1.0
	case remainingMin < 60:
		return 0.5
	case remainingMin < 90:
		return 0.25
	}
	return 0
}

// exitPhasePressure peaks right after full time, when the egress surge lands,
// and carries a small anticipation component late in the match.
func exitPhasePressure(in Input) float64 {
	if in.Now > in.MatchEnd {
		sinceEndMin := float64(in.Now-in.MatchEnd) / ticksPerMinute
		switch {
		case sinceEndMin < 15:
			return 1.0
		case sinceEndMin < 30:
			return 0.8
		case sinceEndMin < 60:
			return 0.4
		}
		return 0.2
	}
	// Anticipation: from three quarters of the match onwards an exit rush is coming.
	matchSpan := in.MatchEnd - in.Kickoff
	if matchSpan > 0 && in.Now > in.Kickoff+matchSpan*3/4 {
		return 0.3
	}
	return 0
}
