package cmd

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	sim "github.com/stadium-sim/stadium-sim/sim"
	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// printSummary renders the run summary as a human-readable report.
func printSummary(result *sim.SimulationResult, elapsed time.Duration) {
	s := result.Summary
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Run ID               : %s\n", result.RunID)
	fmt.Printf("Simulated Time       : %d min\n", s.EndTime/sim.TicksPerMinute)
	fmt.Printf("Fans Arrived         : %d\n", s.Arrived)
	fmt.Printf("Fans Departed        : %d\n", s.Departed)
	fmt.Printf("Fans Inside at End   : %d\n", s.Inside)
	fmt.Printf("Control Actions      : %d\n", s.TotalControlActions)
	fmt.Printf("Sampling Anomalies   : %d\n", s.SamplingAnomalies)
	for _, st := range telemetry.Stages {
		stats := s.Stages[st]
		fmt.Printf("%-9s wait mean/p95/peak : %.2f / %.2f / %.2f min  (peak queue %d, capacity %d -> %d)\n",
			st, stats.MeanWaitMin, stats.P95WaitMin, stats.PeakWaitMin,
			stats.PeakQueue, stats.InitialCapacity, stats.FinalCapacity)
	}
	fmt.Printf("Wall-clock           : %s\n", elapsed.Round(time.Millisecond))
}

// writeResult serializes the full simulation result to a JSON file.
func writeResult(path string, result *sim.SimulationResult) error {
	data, err := jsoniter.ConfigFastest.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
