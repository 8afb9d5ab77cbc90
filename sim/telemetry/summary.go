package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StageStats aggregates one stage's behavior over a full run.
type StageStats struct {
	MeanWaitMin     float64 `json:"mean_wait_min"` // mean realized wait across served fans
	P95WaitMin      float64 `json:"p95_wait_min"`
	PeakWaitMin     float64 `json:"peak_wait_min"`
	PeakQueue       int     `json:"peak_queue"` // max queue length across snapshots
	InitialCapacity int     `json:"initial_capacity"`
	FinalCapacity   int     `json:"final_capacity"`
}

// Summary aggregates a run's snapshots, control actions, and per-fan waits.
type Summary struct {
	EndTime             int64                 `json:"end_time"` // tick the run ended at
	Arrived             int                   `json:"arrived"`
	Departed            int                   `json:"departed"`
	Inside              int                   `json:"inside"` // fans still in the venue at end
	Stages              [NumStages]StageStats `json:"stages"`
	TotalControlActions int                   `json:"total_control_actions"`
	SamplingAnomalies   int                   `json:"sampling_anomalies"` // negative service samples clamped to zero
}

// Summarize computes run aggregates. waits holds the realized wait (minutes) of every
// fan served at each stage; initial and final are the per-stage capacities at run start
// and end. Safe for empty snapshot and wait slices.
func Summarize(
	snapshots []Snapshot,
	actions []ControlAction,
	waits [NumStages][]float64,
	initial, final [NumStages]int,
	anomalies int,
) Summary {
	s := Summary{
		TotalControlActions: len(actions),
		SamplingAnomalies:   anomalies,
	}

	if n := len(snapshots); n > 0 {
		last := snapshots[n-1]
		s.EndTime = last.Time
		s.Arrived = last.Arrived
		s.Departed = last.Departed
		s.Inside = last.Inside
	}

	for i := 0; i < NumStages; i++ {
		st := &s.Stages[i]
		st.InitialCapacity = initial[i]
		st.FinalCapacity = final[i]

		for _, snap := range snapshots {
			if q := snap.Stages[i].QueueLen; q > st.PeakQueue {
				st.PeakQueue = q
			}
		}

		if len(waits[i]) == 0 {
			continue
		}
		st.MeanWaitMin = stat.Mean(waits[i], nil)

		sorted := make([]float64, len(waits[i]))
		copy(sorted, waits[i])
		sort.Float64s(sorted)
		st.P95WaitMin = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		st.PeakWaitMin = sorted[len(sorted)-1]
	}

	return s
}
