package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/stadium-sim/stadium-sim/sim"
)

var (
	// CLI flags for the venue and match timeline
	fans        int    // Total fan count to simulate
	seed        int64  // Seed for all random draws
	logLevel    string // Log verbosity level
	kickoffMin  int64  // Kickoff time (minutes from simulation start)
	matchEndMin int64  // Full time (minutes from simulation start)
	horizonMin  int64  // Simulation horizon (minutes)

	// CLI flags for initial stage capacities
	securityLanes  int // Open security lanes at start
	turnstiles     int // Open turnstiles at start
	vendorStands   int // Open concession stands at start
	exitGates      int // Open exit gates at start
	vendorProb     float64
	sampleInterval int64 // Minutes between metrics snapshots
	ctrlInterval   int64 // Minutes between control decisions

	// CLI flags for the control loop
	adaptive    bool   // Enable the adaptive control policy
	scorerKind  string // Risk scorer: rules, model, hybrid
	hybridBlend float64

	scenarioFile string // YAML scenario overriding the defaults
	outputFile   string // Write the full SimulationResult as JSON
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "stadium-sim",
	Short: "Discrete-event simulator for stadium crowd flow",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the crowd-flow simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		startTime := time.Now()
		result, err := sim.Run(cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		printSummary(result, time.Since(startTime))

		if outputFile != "" {
			if err := writeResult(outputFile, result); err != nil {
				logrus.Fatalf("Unable to write result: %v", err)
			}
			logrus.Infof("Result written to %s", outputFile)
		}
	},
}

// buildConfig layers the scenario file (when given) over the defaults, then
// applies any flag the user set explicitly on top.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if scenarioFile != "" {
		loaded, err := LoadScenario(scenarioFile)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}

	flagSet := cmd.Flags()
	if flagSet.Changed("fans") {
		cfg.FanCount = fans
	}
	if flagSet.Changed("seed") {
		cfg.Seed = seed
	}
	if flagSet.Changed("security") {
		cfg.InitialCapacity.Security = securityLanes
	}
	if flagSet.Changed("turnstiles") {
		cfg.InitialCapacity.Turnstile = turnstiles
	}
	if flagSet.Changed("vendors") {
		cfg.InitialCapacity.Vendor = vendorStands
	}
	if flagSet.Changed("exits") {
		cfg.InitialCapacity.Exit = exitGates
	}
	if flagSet.Changed("kickoff") {
		cfg.KickoffMin = kickoffMin
	}
	if flagSet.Changed("match-end") {
		cfg.MatchEndMin = matchEndMin
	}
	if flagSet.Changed("horizon") {
		cfg.HorizonMin = horizonMin
	}
	if flagSet.Changed("sample-interval") {
		cfg.SamplingIntervalMin = sampleInterval
	}
	if flagSet.Changed("control-interval") {
		cfg.ControlIntervalMin = ctrlInterval
	}
	if flagSet.Changed("adaptive") {
		cfg.AdaptiveControl = adaptive
	}
	if flagSet.Changed("vendor-prob") {
		cfg.VendorVisitProb = vendorProb
	}
	if flagSet.Changed("scorer") {
		cfg.Scorer = sim.ScorerKind(scorerKind)
	}
	if flagSet.Changed("hybrid-blend") {
		cfg.HybridBlend = hybridBlend
	}
	return cfg, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {

	runCmd.Flags().IntVar(&fans, "fans", 68000, "Total number of fans attending")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random generation")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Venue configs
	runCmd.Flags().IntVar(&securityLanes, "security", 30, "Open security lanes at start")
	runCmd.Flags().IntVar(&turnstiles, "turnstiles", 20, "Open turnstiles at start")
	runCmd.Flags().IntVar(&vendorStands, "vendors", 40, "Open concession stands at start")
	runCmd.Flags().IntVar(&exitGates, "exits", 25, "Open exit gates at start")
	runCmd.Flags().Float64Var(&vendorProb, "vendor-prob", 0.30, "Probability an inside fan plans a concession visit")

	// Match timeline configs
	runCmd.Flags().Int64Var(&kickoffMin, "kickoff", 180, "Kickoff time in minutes from simulation start")
	runCmd.Flags().Int64Var(&matchEndMin, "match-end", 300, "Full time in minutes from simulation start")
	runCmd.Flags().Int64Var(&horizonMin, "horizon", 450, "Simulation horizon in minutes")

	// Telemetry and control configs
	runCmd.Flags().Int64Var(&sampleInterval, "sample-interval", 1, "Minutes between metrics snapshots")
	runCmd.Flags().Int64Var(&ctrlInterval, "control-interval", 10, "Minutes between control decisions")
	runCmd.Flags().BoolVar(&adaptive, "adaptive", false, "Enable the adaptive capacity control policy")
	runCmd.Flags().StringVar(&scorerKind, "scorer", "rules", "Risk scorer (rules, model, hybrid)")
	runCmd.Flags().Float64Var(&hybridBlend, "hybrid-blend", 0.5, "Model share of the hybrid score, in [0,1]")

	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "YAML scenario file overriding the defaults")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Write the full simulation result as JSON")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
