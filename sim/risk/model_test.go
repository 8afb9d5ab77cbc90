package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

func TestModelWeights_Validate(t *testing.T) {
	good := ModelWeights{
		Entry: []float64{0.1, 0.4, 0.4, 0.05, 0.05},
		Exit:  []float64{0.1, 0.4, 0.4, 0.05, 0.05},
	}
	assert.NoError(t, good.Validate())

	short := ModelWeights{Entry: []float64{0.5}, Exit: good.Exit}
	assert.Error(t, short.Validate())

	empty := ModelWeights{}
	assert.Error(t, empty.Validate())
}

func TestNewModelScorer_RejectsBadWeights(t *testing.T) {
	_, err := NewModelScorer(DefaultThresholds(), ModelWeights{})
	assert.Error(t, err)
}

func TestModelScorer_BiasOnlyWeights_ConstantScore(t *testing.T) {
	// GIVEN a model whose only non-zero weight is the bias term
	weights := ModelWeights{
		Entry: []float64{0.6, 0, 0, 0, 0},
		Exit:  []float64{0.2, 0, 0, 0, 0},
	}
	scorer, err := NewModelScorer(DefaultThresholds(), weights)
	require.NoError(t, err)

	// WHEN any snapshot is scored
	entry, exit := scorer.Score(testInput(congestedSnapshot(100*60, 1000, 500, 5, 3)))

	// THEN the scores equal the bias weights
	assert.InDelta(t, 0.6, entry.Score, 1e-9)
	assert.Equal(t, telemetry.RiskHigh, entry.Level)
	assert.InDelta(t, 0.2, exit.Score, 1e-9)
	assert.Equal(t, telemetry.RiskLow, exit.Level)
}

func TestModelScorer_QueueFeatureMovesScore(t *testing.T) {
	// GIVEN a model weighting only the queue feature
	weights := ModelWeights{
		Entry: []float64{0, 1, 0, 0, 0},
		Exit:  []float64{0, 1, 0, 0, 0},
	}
	th := DefaultThresholds()
	scorer, err := NewModelScorer(th, weights)
	require.NoError(t, err)

	calm, _ := scorer.Score(testInput(calmSnapshot(100 * 60)))
	busy, _ := scorer.Score(testInput(congestedSnapshot(100*60, th.EntryQueueCritical, 0, 0, 0)))

	// THEN the score follows the normalized queue size
	assert.Zero(t, calm.Score)
	assert.InDelta(t, 1.0, busy.Score, 1e-9)
}

func TestModelScorer_ScoreIsClamped(t *testing.T) {
	// GIVEN weights that would push the raw score past 1
	weights := ModelWeights{
		Entry: []float64{5, 0, 0, 0, 0},
		Exit:  []float64{-5, 0, 0, 0, 0},
	}
	scorer, err := NewModelScorer(DefaultThresholds(), weights)
	require.NoError(t, err)

	entry, exit := scorer.Score(testInput(calmSnapshot(100 * 60)))

	assert.Equal(t, 1.0, entry.Score)
	assert.Equal(t, 0.0, exit.Score)
}

func TestNewHybridScorer_RejectsBadBlend(t *testing.T) {
	weights := ModelWeights{
		Entry: []float64{0.5, 0, 0, 0, 0},
		Exit:  []float64{0.5, 0, 0, 0, 0},
	}
	_, err := NewHybridScorer(DefaultThresholds(), weights, -0.1)
	assert.Error(t, err)
	_, err = NewHybridScorer(DefaultThresholds(), weights, 1.1)
	assert.Error(t, err)
}

func TestHybridScorer_BlendEndpoints(t *testing.T) {
	// GIVEN a congested input where rule and model scores differ
	th := DefaultThresholds()
	weights := ModelWeights{
		Entry: []float64{0.9, 0, 0, 0, 0},
		Exit:  []float64{0.9, 0, 0, 0, 0},
	}
	in := testInput(congestedSnapshot(100*60, 1000, 500, 5, 3))

	rule := NewRuleScorer(th)
	model, err := NewModelScorer(th, weights)
	require.NoError(t, err)

	ruleEntry, _ := rule.Score(in)
	modelEntry, _ := model.Score(in)
	require.NotEqual(t, ruleEntry.Score, modelEntry.Score)

	// WHEN blend is 0 the hybrid matches the rules; at 1 it matches the model
	asRules, err := NewHybridScorer(th, weights, 0)
	require.NoError(t, err)
	asModel, err := NewHybridScorer(th, weights, 1)
	require.NoError(t, err)

	hEntry, _ := asRules.Score(in)
	assert.InDelta(t, ruleEntry.Score, hEntry.Score, 1e-9)
	hEntry, _ = asModel.Score(in)
	assert.InDelta(t, modelEntry.Score, hEntry.Score, 1e-9)
}

func TestHybridScorer_MidBlendAverages(t *testing.T) {
	// GIVEN a half-and-half blend
	th := DefaultThresholds()
	weights := ModelWeights{
		Entry: []float64{0.9, 0, 0, 0, 0},
		Exit:  []float64{0.9, 0, 0, 0, 0},
	}
	in := testInput(congestedSnapshot(100*60, 1000, 500, 5, 3))

	rule := NewRuleScorer(th)
	model, err := NewModelScorer(th, weights)
	require.NoError(t, err)
	hybrid, err := NewHybridScorer(th, weights, 0.5)
	require.NoError(t, err)

	ruleEntry, _ := rule.Score(in)
	modelEntry, _ := model.Score(in)
	hybridEntry, _ := hybrid.Score(in)

	assert.InDelta(t, (ruleEntry.Score+modelEntry.Score)/2, hybridEntry.Score, 1e-9)
}
