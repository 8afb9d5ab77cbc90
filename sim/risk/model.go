package risk

import (
	"fmt"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// NumModelFeatures is the length of the feature vector (including the bias term)
// a trained weight vector must match.
const NumModelFeatures = 5

// ModelWeights carries the trained linear weights for each risk type.
// The trainer produces these offline; the simulator never retrains them.
type ModelWeights struct {
	Entry []float64 `yaml:"entry" json:"entry"`
	Exit  []float64 `yaml:"exit" json:"exit"`
}

// Validate reports a weight vector whose length does not match the feature vector.
func (w ModelWeights) Validate() error {
	if len(w.Entry) != NumModelFeatures {
		return fmt.Errorf("entry weights: got %d values, want %d", len(w.Entry), NumModelFeatures)
	}
	if len(w.Exit) != NumModelFeatures {
		return fmt.Errorf("exit weights: got %d values, want %d", len(w.Exit), NumModelFeatures)
	}
	return nil
}

// ModelScorer scores with a trained linear model over normalized snapshot features.
type ModelScorer struct {
	t Thresholds
	w ModelWeights
}

// NewModelScorer creates a model-backed scorer from trained weights.
func NewModelScorer(t Thresholds, w ModelWeights) (*ModelScorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &ModelScorer{t: t, w: w}, nil
}

func (s *ModelScorer) Score(in Input) (entry, exit telemetry.RiskAssessment) {
	entryQueue := in.Latest.EntryQueue()
	entryWait := in.Latest.EntryWaitMin()
	entryScore := clamp01(dot(s.w.Entry, s.features(in, telemetry.RiskEntry)))
	entry = buildAssessment(s.t, in, telemetry.RiskEntry, entryScore, entryWait, entryQueue)

	exitQueue := in.Latest.Stages[telemetry.StageExit].QueueLen
	exitWait := in.Latest.Stages[telemetry.StageExit].MeanWaitMin
	exitScore := clamp01(dot(s.w.Exit, s.features(in, telemetry.RiskExit)))
	exit = buildAssessment(s.t, in, telemetry.RiskExit, exitScore, exitWait, exitQueue)

	return entry, exit
}

// features builds the normalized feature vector [bias, queue, wait, rate, occupancy].
func (s *ModelScorer) features(in Input, typ telemetry.RiskType) []float64 {
	var qterm, wterm, rate float64
	if typ == telemetry.RiskEntry {
		qterm = norm(float64(in.Latest.EntryQueue()), float64(s.t.EntryQueueCritical))
		wterm = norm(in.Latest.EntryWaitMin(), s.t.EntryWaitCriticalMin)
		rate = in.Latest.ArrivalRate
	} else {
		qterm = norm(float64(in.Latest.Stages[telemetry.StageExit].QueueLen), float64(s.t.ExitQueueCritical))
		wterm = norm(in.Latest.Stages[telemetry.StageExit].MeanWaitMin, s.t.ExitWaitCriticalMin)
		rate = in.Latest.ExitRate
	}

	occupancy := 0.0
	if in.Latest.Arrived > 0 {
		occupancy = float64(in.Latest.Inside) / float64(in.Latest.Arrived)
	}

	// Rate normalized against the entry-queue critical size drained in ten minutes.
	rateNorm := norm(rate, float64(s.t.EntryQueueCritical)/10)

	return []float64{1, qterm, wterm, rateNorm, occupancy}
}

func dot(w, x []float64) float64 {
	sum := 0.0
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}

// HybridScorer blends the rule-based and model-backed scores. Blend is the
// model's share: 0 behaves like the rule scorer, 1 like the model scorer.
type HybridScorer struct {
	t     Thresholds
	rule  *RuleScorer
	model *ModelScorer
	blend float64
}

// NewHybridScorer creates a hybrid scorer. Blend outside [0,1] is an error.
func NewHybridScorer(t Thresholds, w ModelWeights, blend float64) (*HybridScorer, error) {
	if blend < 0 || blend > 1 {
		return nil, fmt.Errorf("blend must be in [0,1], got %v", blend)
	}
	model, err := NewModelScorer(t, w)
	if err != nil {
		return nil, err
	}
	return &HybridScorer{t: t, rule: NewRuleScorer(t), model: model, blend: blend}, nil
}

func (s *HybridScorer) Score(in Input) (entry, exit telemetry.RiskAssessment) {
	ruleEntry, ruleExit := s.rule.Score(in)
	modelEntry, modelExit := s.model.Score(in)

	entryScore := clamp01((1-s.blend)*ruleEntry.Score + s.blend*modelEntry.Score)
	exitScore := clamp01((1-s.blend)*ruleExit.Score + s.blend*modelExit.Score)

	entry = buildAssessment(s.t, in, telemetry.RiskEntry, entryScore,
		in.Latest.EntryWaitMin(), in.Latest.EntryQueue())
	exit = buildAssessment(s.t, in, telemetry.RiskExit, exitScore,
		in.Latest.Stages[telemetry.StageExit].MeanWaitMin,
		in.Latest.Stages[telemetry.StageExit].QueueLen)

	return entry, exit
}
