package sim

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// runID derives a stable identifier from the configuration, so the same
// seed and parameters always name the same run.
func runID(cfg Config) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%+v", cfg))).String()
}

// SimulationResult is the complete observable record of one run: the
// configuration it was produced from, the gap-free snapshot series, every
// control action taken, and the aggregate summary.
type SimulationResult struct {
	RunID     string                    `json:"run_id"`
	Config    Config                    `json:"config"`
	Snapshots []telemetry.Snapshot      `json:"snapshots"`
	Actions   []telemetry.ControlAction `json:"actions"`
	Summary   telemetry.Summary         `json:"summary"`
}

func (s *Simulator) buildResult() *SimulationResult {
	snapshots := s.Collector.Snapshots()
	actions := s.Policy.Actions()
	return &SimulationResult{
		RunID:     runID(s.cfg),
		Config:    s.cfg,
		Snapshots: snapshots,
		Actions:   actions,
		Summary: telemetry.Summarize(
			snapshots,
			actions,
			s.Collector.waits,
			s.cfg.InitialCapacity.asArray(),
			s.Pool.capacities(),
			s.anomalies,
		),
	}
}
