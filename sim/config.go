package sim

import (
	"fmt"

	"github.com/stadium-sim/stadium-sim/sim/risk"
	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// TicksPerMinute converts configured minutes into simulation ticks (seconds).
const TicksPerMinute int64 = 60

// StageCaps holds one integer per queueing stage.
type StageCaps struct {
	Security  int `yaml:"security" json:"security"`
	Turnstile int `yaml:"turnstile" json:"turnstile"`
	Vendor    int `yaml:"vendor" json:"vendor"`
	Exit      int `yaml:"exit" json:"exit"`
}

// ForStage returns the value for the given stage.
func (c StageCaps) ForStage(stage telemetry.Stage) int {
	switch stage {
	case telemetry.StageSecurity:
		return c.Security
	case telemetry.StageTurnstile:
		return c.Turnstile
	case telemetry.StageVendor:
		return c.Vendor
	case telemetry.StageExit:
		return c.Exit
	}
	return 0
}

func (c StageCaps) asArray() [telemetry.NumStages]int {
	var out [telemetry.NumStages]int
	for _, st := range telemetry.Stages {
		out[st] = c.ForStage(st)
	}
	return out
}

// ServiceTime parameterizes one stage's Gaussian service-time distribution,
// with an optional slow path (secondary security checks, turnstile ticket
// issues) expressed as a mixture.
type ServiceTime struct {
	MeanMin       float64 `yaml:"mean_min" json:"mean_min"`
	StdDevMin     float64 `yaml:"stddev_min" json:"stddev_min"`
	SlowProb      float64 `yaml:"slow_prob" json:"slow_prob"`
	SlowMeanMin   float64 `yaml:"slow_mean_min" json:"slow_mean_min"`
	SlowStdDevMin float64 `yaml:"slow_stddev_min" json:"slow_stddev_min"`
}

// ControlConfig holds the control policy's trigger thresholds and step sizes.
type ControlConfig struct {
	EntryQueueTrigger int     `yaml:"entry_queue_trigger" json:"entry_queue_trigger"`
	ExitQueueTrigger  int     `yaml:"exit_queue_trigger" json:"exit_queue_trigger"`
	ScoreTrigger      float64 `yaml:"score_trigger" json:"score_trigger"`
	StrongScore       float64 `yaml:"strong_score" json:"strong_score"` // upper sub-range boundary for STRONG steps

	SecurityStep       int `yaml:"security_step" json:"security_step"`
	SecurityStepStrong int `yaml:"security_step_strong" json:"security_step_strong"`
	VendorStep         int `yaml:"vendor_step" json:"vendor_step"`
	VendorStepStrong   int `yaml:"vendor_step_strong" json:"vendor_step_strong"`
	ExitStep           int `yaml:"exit_step" json:"exit_step"`
	ExitStepStrong     int `yaml:"exit_step_strong" json:"exit_step_strong"`
}

// ScorerKind selects the risk scorer implementation.
type ScorerKind string

const (
	ScorerRules  ScorerKind = "rules"
	ScorerModel  ScorerKind = "model"
	ScorerHybrid ScorerKind = "hybrid"
)

// Config is the complete, immutable input of one simulation run.
// Constructed once, validated up front, then passed by value.
type Config struct {
	FanCount int   `yaml:"fan_count" json:"fan_count"`
	Seed     int64 `yaml:"seed" json:"seed"`

	InitialCapacity StageCaps `yaml:"initial_capacity" json:"initial_capacity"`
	MaxCapacity     StageCaps `yaml:"max_capacity" json:"max_capacity"`

	KickoffMin  int64 `yaml:"kickoff_min" json:"kickoff_min"`
	MatchEndMin int64 `yaml:"match_end_min" json:"match_end_min"`
	HorizonMin  int64 `yaml:"horizon_min" json:"horizon_min"`

	SamplingIntervalMin int64 `yaml:"sampling_interval_min" json:"sampling_interval_min"`
	ControlIntervalMin  int64 `yaml:"control_interval_min" json:"control_interval_min"`

	AdaptiveControl bool `yaml:"adaptive_control" json:"adaptive_control"`
	// TerminateOnDrain stops sampling once the arrival target is exhausted and
	// every fan has departed; false keeps the cadence running to the horizon.
	TerminateOnDrain bool `yaml:"terminate_on_drain" json:"terminate_on_drain"`

	VendorVisitProb float64 `yaml:"vendor_visit_prob" json:"vendor_visit_prob"`

	ServiceTimes [telemetry.NumStages]ServiceTime `yaml:"-" json:"service_times"`

	Scorer       ScorerKind        `yaml:"scorer" json:"scorer"`
	HybridBlend  float64           `yaml:"hybrid_blend" json:"hybrid_blend"`
	ModelWeights risk.ModelWeights `yaml:"model_weights" json:"model_weights"`

	Risk    risk.Thresholds `yaml:"risk" json:"risk"`
	Control ControlConfig   `yaml:"control" json:"control"`
}

// DefaultConfig returns the full-capacity venue scenario: 68k fans, kickoff
// three hours in, two-hour match, 1-minute sampling, 10-minute control cadence.
func DefaultConfig() Config {
	return Config{
		FanCount: 68000,
		Seed:     42,
		InitialCapacity: StageCaps{
			Security:  30,
			Turnstile: 20,
			Vendor:    40,
			Exit:      25,
		},
		MaxCapacity: StageCaps{
			Security:  80,
			Turnstile: 60,
			Vendor:    150,
			Exit:      60,
		},
		KickoffMin:          180,
		MatchEndMin:         300,
		HorizonMin:          450,
		SamplingIntervalMin: 1,
		ControlIntervalMin:  10,
		AdaptiveControl:     false,
		TerminateOnDrain:    true,
		VendorVisitProb:     0.30,
		ServiceTimes:        DefaultServiceTimes(),
		Scorer:              ScorerRules,
		Risk:                risk.DefaultThresholds(),
		Control: ControlConfig{
			EntryQueueTrigger:  1500,
			ExitQueueTrigger:   1000,
			ScoreTrigger:       0.50,
			StrongScore:        0.70,
			SecurityStep:       3,
			SecurityStepStrong: 5,
			VendorStep:         5,
			VendorStepStrong:   10,
			ExitStep:           5,
			ExitStepStrong:     10,
		},
	}
}

// DefaultServiceTimes returns the per-stage service distributions in minutes:
// walk-through screening with a 10% secondary-check slow path, ticket scanning
// with a 5% assistance slow path, concession service, and gate egress.
func DefaultServiceTimes() [telemetry.NumStages]ServiceTime {
	var st [telemetry.NumStages]ServiceTime
	st[telemetry.StageSecurity] = ServiceTime{
		MeanMin: 0.125, StdDevMin: 0.04,
		SlowProb: 0.10, SlowMeanMin: 0.45, SlowStdDevMin: 0.10,
	}
	st[telemetry.StageTurnstile] = ServiceTime{
		MeanMin: 0.104, StdDevMin: 0.03,
		SlowProb: 0.05, SlowMeanMin: 0.40, SlowStdDevMin: 0.10,
	}
	st[telemetry.StageVendor] = ServiceTime{MeanMin: 1.25, StdDevMin: 0.50}
	st[telemetry.StageExit] = ServiceTime{MeanMin: 0.05, StdDevMin: 0.015}
	return st
}

// Tick conversions.

func (c Config) kickoffTicks() int64  { return c.KickoffMin * TicksPerMinute }
func (c Config) matchEndTicks() int64 { return c.MatchEndMin * TicksPerMinute }
func (c Config) horizonTicks() int64  { return c.HorizonMin * TicksPerMinute }
func (c Config) samplingTicks() int64 { return c.SamplingIntervalMin * TicksPerMinute }
func (c Config) controlTicks() int64  { return c.ControlIntervalMin * TicksPerMinute }

// Validate fails fast on a malformed configuration, before any event is
// scheduled. A zero fan count is a valid (empty) run; a negative one is not.
func (c Config) Validate() error {
	if c.FanCount < 0 {
		return &ConfigurationError{Field: "fan_count", Reason: fmt.Sprintf("must be non-negative, got %d", c.FanCount)}
	}
	for _, st := range telemetry.Stages {
		initial := c.InitialCapacity.ForStage(st)
		max := c.MaxCapacity.ForStage(st)
		if initial <= 0 {
			return &ConfigurationError{
				Field:  fmt.Sprintf("initial_capacity.%s", st),
				Reason: fmt.Sprintf("must be positive, got %d", initial),
			}
		}
		if max < initial {
			return &ConfigurationError{
				Field:  fmt.Sprintf("max_capacity.%s", st),
				Reason: fmt.Sprintf("must be >= initial capacity %d, got %d", initial, max),
			}
		}
	}
	if c.KickoffMin <= 0 {
		return &ConfigurationError{Field: "kickoff_min", Reason: fmt.Sprintf("must be positive, got %d", c.KickoffMin)}
	}
	if c.MatchEndMin <= c.KickoffMin {
		return &ConfigurationError{
			Field:  "match_end_min",
			Reason: fmt.Sprintf("must be after kickoff (%d), got %d", c.KickoffMin, c.MatchEndMin),
		}
	}
	if c.HorizonMin <= c.MatchEndMin {
		return &ConfigurationError{
			Field:  "horizon_min",
			Reason: fmt.Sprintf("must be after match end (%d), got %d", c.MatchEndMin, c.HorizonMin),
		}
	}
	if c.SamplingIntervalMin <= 0 {
		return &ConfigurationError{Field: "sampling_interval_min", Reason: fmt.Sprintf("must be positive, got %d", c.SamplingIntervalMin)}
	}
	if c.ControlIntervalMin <= 0 || c.ControlIntervalMin%c.SamplingIntervalMin != 0 {
		// The control cadence runs strictly after a co-timed sample, so it
		// must land on the sampling grid.
		return &ConfigurationError{
			Field:  "control_interval_min",
			Reason: fmt.Sprintf("must be a positive multiple of sampling interval %d, got %d", c.SamplingIntervalMin, c.ControlIntervalMin),
		}
	}
	if c.VendorVisitProb < 0 || c.VendorVisitProb > 1 {
		return &ConfigurationError{Field: "vendor_visit_prob", Reason: fmt.Sprintf("must be in [0,1], got %v", c.VendorVisitProb)}
	}
	for _, st := range telemetry.Stages {
		svc := c.ServiceTimes[st]
		if svc.MeanMin <= 0 || svc.StdDevMin < 0 {
			return &ConfigurationError{
				Field:  fmt.Sprintf("service_times.%s", st),
				Reason: fmt.Sprintf("mean must be positive and stddev non-negative, got mean=%v stddev=%v", svc.MeanMin, svc.StdDevMin),
			}
		}
		if svc.SlowProb < 0 || svc.SlowProb > 1 {
			return &ConfigurationError{
				Field:  fmt.Sprintf("service_times.%s", st),
				Reason: fmt.Sprintf("slow_prob must be in [0,1], got %v", svc.SlowProb),
			}
		}
	}
	if err := c.Risk.Validate(); err != nil {
		return &ConfigurationError{Field: "risk", Reason: err.Error()}
	}
	if err := c.Control.validate(); err != nil {
		return &ConfigurationError{Field: "control", Reason: err.Error()}
	}
	switch c.Scorer {
	case ScorerRules:
	case ScorerModel:
		if err := c.ModelWeights.Validate(); err != nil {
			return &ConfigurationError{Field: "model_weights", Reason: err.Error()}
		}
	case ScorerHybrid:
		if err := c.ModelWeights.Validate(); err != nil {
			return &ConfigurationError{Field: "model_weights", Reason: err.Error()}
		}
		if c.HybridBlend < 0 || c.HybridBlend > 1 {
			return &ConfigurationError{Field: "hybrid_blend", Reason: fmt.Sprintf("must be in [0,1], got %v", c.HybridBlend)}
		}
	default:
		return &ConfigurationError{Field: "scorer", Reason: fmt.Sprintf("unknown scorer %q", c.Scorer)}
	}
	return nil
}

func (c ControlConfig) validate() error {
	if c.EntryQueueTrigger <= 0 || c.ExitQueueTrigger <= 0 {
		return fmt.Errorf("queue triggers must be positive, got entry=%d exit=%d", c.EntryQueueTrigger, c.ExitQueueTrigger)
	}
	if c.ScoreTrigger < 0 || c.ScoreTrigger >= 1 {
		return fmt.Errorf("score_trigger must be in [0,1), got %v", c.ScoreTrigger)
	}
	if c.StrongScore <= c.ScoreTrigger || c.StrongScore > 1 {
		return fmt.Errorf("strong_score must be in (score_trigger, 1], got %v", c.StrongScore)
	}
	if c.SecurityStep <= 0 || c.SecurityStepStrong < c.SecurityStep ||
		c.VendorStep <= 0 || c.VendorStepStrong < c.VendorStep ||
		c.ExitStep <= 0 || c.ExitStepStrong < c.ExitStep {
		return fmt.Errorf("step sizes must be positive and strong steps >= moderate steps")
	}
	return nil
}
