package sim

import (
	"math"
	"math/rand"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// Rate profiles are calibrated for a full 68k venue with kickoff at t=180min
// and rescaled to the configured fan count and kickoff time.
const (
	nominalFanCount   = 68000.0
	nominalKickoffMin = 180.0
)

// minRatePerMin bounds inter-arrival gaps so low-rate phases cannot stall the
// event stream indefinitely.
const minRatePerMin = 0.5

// maxGapTicks caps a single exponential gap at 30 simulated minutes.
const maxGapTicks = 30 * TicksPerMinute

// PhaseAt returns the event phase for a tick, given kickoff and match-end ticks.
func PhaseAt(t, kickoff, matchEnd int64) telemetry.Phase {
	switch {
	case t >= matchEnd:
		return telemetry.PhaseExitFlow
	case t >= kickoff:
		return telemetry.PhaseMatchTime
	case t >= kickoff*2/3:
		return telemetry.PhasePeakRush
	case t >= kickoff/3:
		return telemetry.PhaseBuildingUp
	}
	return telemetry.PhaseEarlyArrivals
}

// ArrivalGenerator produces entry demand as a non-homogeneous point process:
// exponential inter-arrival gaps parameterized by the instantaneous
// phase-dependent rate. It stops exactly at the configured fan-count target.
type ArrivalGenerator struct {
	cfg       Config
	generated int
}

func newArrivalGenerator(cfg Config) *ArrivalGenerator {
	return &ArrivalGenerator{cfg: cfg}
}

func (g *ArrivalGenerator) done() bool {
	return g.generated >= g.cfg.FanCount
}

// scale maps the nominal 68k/180min profile onto the configured run so the
// profile's integral stays close to the fan-count target.
func (g *ArrivalGenerator) scale() float64 {
	return float64(g.cfg.FanCount) / nominalFanCount * nominalKickoffMin / float64(g.cfg.KickoffMin)
}

// RateAt returns the instantaneous entry rate in fans per minute.
//
// The five phases have distinct shapes: two ramps, a peak-centered bell before
// kickoff, an exponential latecomer decay during the match, and a residual
// trickle during exit flow.
func (g *ArrivalGenerator) RateAt(t int64) float64 {
	k := g.cfg.kickoffTicks()
	var nominal float64

	switch PhaseAt(t, k, g.cfg.matchEndTicks()) {
	case telemetry.PhaseEarlyArrivals:
		frac := float64(t) / (float64(k) / 3)
		nominal = 150 + 100*frac
	case telemetry.PhaseBuildingUp:
		frac := (float64(t) - float64(k)/3) / (float64(k) / 3)
		nominal = 250 + 200*frac
	case telemetry.PhasePeakRush:
		center := 0.85 * float64(k)
		width := 0.12 * float64(k)
		d := (float64(t) - center) / width
		nominal = 300 + 250*math.Exp(-d*d)
	case telemetry.PhaseMatchTime:
		decayTicks := 20 * float64(TicksPerMinute)
		nominal = 25 * math.Exp(-(float64(t)-float64(k))/decayTicks)
	case telemetry.PhaseExitFlow:
		nominal = 1
	}

	return math.Max(nominal*g.scale(), minRatePerMin)
}

// nextGap draws an exponential inter-arrival gap in ticks from the
// instantaneous rate, clamped to [1, maxGapTicks].
func (g *ArrivalGenerator) nextGap(t int64, rng *rand.Rand) int64 {
	ratePerTick := g.RateAt(t) / float64(TicksPerMinute)
	gap := int64(rng.ExpFloat64() / ratePerTick)
	if gap < 1 {
		return 1
	}
	if gap > maxGapTicks {
		return maxGapTicks
	}
	return gap
}

// ExitGenerator releases dwelling agents toward the exit stage once the match
// has ended, following a bell-shaped egress rate. It creates no agents.
type ExitGenerator struct {
	cfg      Config
	released int
}

func newExitGenerator(cfg Config) *ExitGenerator {
	return &ExitGenerator{cfg: cfg}
}

// rateAt returns the instantaneous exit-release rate in fans per minute.
// The bell peaks fifteen minutes after full time; once the bell has passed,
// the rate tracks the remaining unreleased population so the venue drains.
func (g *ExitGenerator) rateAt(t int64, remaining int) float64 {
	center := g.cfg.matchEndTicks() + 15*TicksPerMinute
	width := 12 * float64(TicksPerMinute)
	peak := 3200.0 * float64(g.cfg.FanCount) / nominalFanCount

	d := (float64(t) - float64(center)) / width
	rate := peak * math.Exp(-d*d)

	if t > center+2*int64(width) {
		rate = math.Max(rate, float64(remaining)/10)
	}
	return math.Max(rate, minRatePerMin)
}

func (g *ExitGenerator) nextGap(t int64, remaining int, rng *rand.Rand) int64 {
	ratePerTick := g.rateAt(t, remaining) / float64(TicksPerMinute)
	gap := int64(rng.ExpFloat64() / ratePerTick)
	if gap < 1 {
		return 1
	}
	if gap > maxGapTicks {
		return maxGapTicks
	}
	return gap
}
