package sim

import (
	"math"
	"math/rand"
)

// serviceSampler draws Gaussian service durations for one stage, with an
// optional slow-path mixture (secondary screening, ticket assistance).
// A negative sample is clamped to zero and reported as a sampling anomaly;
// the run continues.
type serviceSampler struct {
	cfg ServiceTime
}

// sampleTicks returns a service duration in ticks and whether the draw was a
// clamped negative sample.
func (s serviceSampler) sampleTicks(rng *rand.Rand) (int64, bool) {
	mean, stdDev := s.cfg.MeanMin, s.cfg.StdDevMin
	if s.cfg.SlowProb > 0 && rng.Float64() < s.cfg.SlowProb {
		mean, stdDev = s.cfg.SlowMeanMin, s.cfg.SlowStdDevMin
	}

	minutes := rng.NormFloat64()*stdDev + mean
	if minutes < 0 {
		return 0, true
	}

	ticks := int64(math.Round(minutes * float64(TicksPerMinute)))
	if ticks < 1 {
		ticks = 1
	}
	return ticks, false
}
