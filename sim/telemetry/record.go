package telemetry

// StageSample captures the state of one stage at a sampling instant.
type StageSample struct {
	QueueLen    int     `json:"queue_len"`              // fans waiting for a slot
	MeanWaitMin float64 `json:"mean_wait_min"`          // mean wait (minutes) over fans waiting or in service
	Active      int     `json:"active"`                 // slots currently serving
	Capacity    int     `json:"capacity"`               // configured slots at sample time
	Utilization float64 `json:"utilization"`            // active / capacity, 0 when capacity is 0
}

// Snapshot is one immutable telemetry record, emitted on the sampling cadence.
// Once recorded it is never mutated; the ordered sequence of snapshots is the
// sole telemetry source for risk scoring and external reporting.
type Snapshot struct {
	Time        int64                   `json:"time"`         // tick, multiple of the sampling interval
	Phase       Phase                   `json:"phase"`        // event phase at sample time
	Stages      [NumStages]StageSample  `json:"stages"`       // indexed by Stage
	ArrivalRate float64                 `json:"arrival_rate"` // fans/min since previous sample
	ExitRate    float64                 `json:"exit_rate"`    // fans/min since previous sample
	Arrived     int                     `json:"arrived"`      // cumulative spawned fans
	Departed    int                     `json:"departed"`     // cumulative terminal fans
	Inside      int                     `json:"inside"`       // fans dwelling in the venue (not at any stage)
}

// EntryQueue returns the combined security plus turnstile queue length,
// the quantity the entry control rule gates on.
func (s Snapshot) EntryQueue() int {
	return s.Stages[StageSecurity].QueueLen + s.Stages[StageTurnstile].QueueLen
}

// EntryWaitMin returns the combined security plus turnstile mean wait in minutes.
func (s Snapshot) EntryWaitMin() float64 {
	return s.Stages[StageSecurity].MeanWaitMin + s.Stages[StageTurnstile].MeanWaitMin
}

// WaitingAtStages returns the total fan count waiting or in service across all stages.
func (s Snapshot) WaitingAtStages() int {
	total := 0
	for _, st := range s.Stages {
		total += st.QueueLen + st.Active
	}
	return total
}

// Phase is a named time window with a distinct arrival/exit rate shape.
type Phase string

const (
	PhaseEarlyArrivals Phase = "early_arrivals"
	PhaseBuildingUp    Phase = "building_up"
	PhasePeakRush      Phase = "peak_rush"
	PhaseMatchTime     Phase = "match_time"
	PhaseExitFlow      Phase = "exit_flow"
)

// RiskType distinguishes the two independent congestion assessments.
type RiskType string

const (
	RiskEntry RiskType = "ENTRY"
	RiskExit  RiskType = "EXIT"
)

// RiskLevel is the categorical bucket derived from a continuous risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// LevelForScore maps a risk score in [0,1] to its categorical level.
// Boundaries: score < 0.35 LOW; [0.35, 0.55) MODERATE; [0.55, 0.75) HIGH; >= 0.75 CRITICAL.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 0.75:
		return RiskCritical
	case score >= 0.55:
		return RiskHigh
	case score >= 0.35:
		return RiskModerate
	}
	return RiskLow
}

// RiskAssessment is a pure scoring result over one telemetry snapshot.
type RiskAssessment struct {
	Type               RiskType  `json:"type"`
	Score              float64   `json:"score"`      // clamped to [0,1]
	Level              RiskLevel `json:"level"`
	PredictedWaitMin   float64   `json:"predicted_wait_min"`
	PredictedQueue     int       `json:"predicted_queue"`
	Confidence         float64   `json:"confidence"` // in [0,1]
	TimeToCriticalMin  float64   `json:"time_to_critical_min,omitempty"`
	HasTimeToCritical  bool      `json:"has_time_to_critical"` // entry only; false when growth is non-positive
}

// Magnitude classifies how aggressively a control action scales capacity.
type Magnitude string

const (
	MagnitudeModerate Magnitude = "MODERATE"
	MagnitudeStrong   Magnitude = "STRONG"
)

// CapacityChange records one stage's capacity mutation within a control action.
type CapacityChange struct {
	Stage     Stage `json:"stage"`
	Before    int   `json:"before"`
	After     int   `json:"after"`
	Saturated bool  `json:"saturated"` // requested step clamped at the configured maximum
}

// ControlAction is the append-only record of one non-trivial control decision.
type ControlAction struct {
	Time      int64            `json:"time"`
	Trigger   RiskType         `json:"trigger"`
	Magnitude Magnitude        `json:"magnitude"`
	Score     float64          `json:"score"`
	Changes   []CapacityChange `json:"changes"`
	Rationale string           `json:"rationale"`
}
