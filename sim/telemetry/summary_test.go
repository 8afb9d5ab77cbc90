package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyRun(t *testing.T) {
	// GIVEN no snapshots, actions, or waits
	var waits [NumStages][]float64
	var caps [NumStages]int

	s := Summarize(nil, nil, waits, caps, caps, 0)

	// THEN the summary is all zero and safe to use
	assert.Zero(t, s.EndTime)
	assert.Zero(t, s.Arrived)
	assert.Zero(t, s.TotalControlActions)
	for i := 0; i < NumStages; i++ {
		assert.Zero(t, s.Stages[i].MeanWaitMin)
		assert.Zero(t, s.Stages[i].P95WaitMin)
	}
}

func TestSummarize_TakesTotalsFromLastSnapshot(t *testing.T) {
	// GIVEN two snapshots with growing totals
	snaps := []Snapshot{
		{Time: 60, Arrived: 10, Departed: 0, Inside: 4},
		{Time: 120, Arrived: 25, Departed: 5, Inside: 12},
	}
	var waits [NumStages][]float64
	var caps [NumStages]int

	s := Summarize(snaps, nil, waits, caps, caps, 3)

	// THEN the summary reflects the final snapshot and the anomaly count
	assert.Equal(t, int64(120), s.EndTime)
	assert.Equal(t, 25, s.Arrived)
	assert.Equal(t, 5, s.Departed)
	assert.Equal(t, 12, s.Inside)
	assert.Equal(t, 3, s.SamplingAnomalies)
}

func TestSummarize_StageWaitAggregates(t *testing.T) {
	// GIVEN twenty security waits of 1..20 minutes
	var waits [NumStages][]float64
	for i := 1; i <= 20; i++ {
		waits[StageSecurity] = append(waits[StageSecurity], float64(i))
	}
	initial := [NumStages]int{30, 20, 40, 25}
	final := [NumStages]int{45, 20, 50, 25}

	s := Summarize(nil, nil, waits, initial, final, 0)

	// THEN mean, p95, and peak follow the wait distribution
	sec := s.Stages[StageSecurity]
	assert.InDelta(t, 10.5, sec.MeanWaitMin, 1e-9)
	assert.InDelta(t, 19.0, sec.P95WaitMin, 1e-9)
	assert.InDelta(t, 20.0, sec.PeakWaitMin, 1e-9)
	assert.Equal(t, 30, sec.InitialCapacity)
	assert.Equal(t, 45, sec.FinalCapacity)

	// AND a stage with no served fans stays zero
	assert.Zero(t, s.Stages[StageTurnstile].MeanWaitMin)
}

func TestSummarize_PeakQueuePerStage(t *testing.T) {
	// GIVEN snapshots where the exit queue spikes then recedes
	var snaps []Snapshot
	for _, q := range []int{0, 150, 900, 400} {
		var snap Snapshot
		snap.Stages[StageExit].QueueLen = q
		snaps = append(snaps, snap)
	}
	var waits [NumStages][]float64
	var caps [NumStages]int

	s := Summarize(snaps, nil, waits, caps, caps, 0)

	assert.Equal(t, 900, s.Stages[StageExit].PeakQueue)
	assert.Zero(t, s.Stages[StageSecurity].PeakQueue)
}

func TestSummarize_CountsActions(t *testing.T) {
	actions := []ControlAction{
		{Time: 600, Trigger: RiskEntry},
		{Time: 1200, Trigger: RiskExit},
	}
	var waits [NumStages][]float64
	var caps [NumStages]int

	s := Summarize(nil, actions, waits, caps, caps, 0)

	assert.Equal(t, 2, s.TotalControlActions)
}
