package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/stadium-sim/stadium-sim/sim"
	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

var (
	cmpFans     int
	cmpSeed     int64
	cmpScenario string
	cmpLogLevel string
	cmpScorer   string
)

// compareCmd runs the same scenario twice on one seed, with the control policy
// off and then on, and prints the per-stage deltas.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a baseline run against an adaptive-control run on the same seed",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(cmpLogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cmpLogLevel)
		}
		logrus.SetLevel(level)

		cfg := sim.DefaultConfig()
		if cmpScenario != "" {
			cfg, err = LoadScenario(cmpScenario)
			if err != nil {
				logrus.Fatalf("Invalid scenario: %v", err)
			}
		}
		if cmd.Flags().Changed("fans") {
			cfg.FanCount = cmpFans
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = cmpSeed
		}
		if cmd.Flags().Changed("scorer") {
			cfg.Scorer = sim.ScorerKind(cmpScorer)
		}

		cfg.AdaptiveControl = false
		baseline, err := sim.Run(cfg)
		if err != nil {
			logrus.Fatalf("Baseline run failed: %v", err)
		}

		cfg.AdaptiveControl = true
		adaptive, err := sim.Run(cfg)
		if err != nil {
			logrus.Fatalf("Adaptive run failed: %v", err)
		}

		printComparison(baseline, adaptive)
	},
}

func printComparison(baseline, adaptive *sim.SimulationResult) {
	fmt.Println("=== Baseline vs Adaptive ===")
	fmt.Printf("Seed                 : %d\n", baseline.Config.Seed)
	fmt.Printf("Fans                 : %d\n", baseline.Summary.Arrived)
	fmt.Printf("Control Actions      : %d -> %d\n",
		baseline.Summary.TotalControlActions, adaptive.Summary.TotalControlActions)
	fmt.Printf("%-9s  %14s  %14s  %10s\n", "stage", "baseline p95", "adaptive p95", "delta")
	for _, st := range telemetry.Stages {
		b := baseline.Summary.Stages[st].P95WaitMin
		a := adaptive.Summary.Stages[st].P95WaitMin
		fmt.Printf("%-9s  %11.2f min  %11.2f min  %+6.2f min\n", st, b, a, a-b)
	}
	for _, st := range telemetry.Stages {
		b := baseline.Summary.Stages[st]
		a := adaptive.Summary.Stages[st]
		if a.FinalCapacity != b.FinalCapacity {
			fmt.Printf("%-9s capacity   : %d -> %d (adaptive)\n", st, a.InitialCapacity, a.FinalCapacity)
		}
	}
}

func init() {
	compareCmd.Flags().IntVar(&cmpFans, "fans", 68000, "Total number of fans attending")
	compareCmd.Flags().Int64Var(&cmpSeed, "seed", 42, "Seed shared by both runs")
	compareCmd.Flags().StringVar(&cmpScenario, "scenario", "", "YAML scenario file overriding the defaults")
	compareCmd.Flags().StringVar(&cmpScorer, "scorer", "rules", "Risk scorer (rules, model, hybrid)")
	compareCmd.Flags().StringVar(&cmpLogLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(compareCmd)
}
