package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceSampler_PositiveSample(t *testing.T) {
	// GIVEN a narrow distribution around two minutes
	sampler := serviceSampler{cfg: ServiceTime{MeanMin: 2.0, StdDevMin: 0.1}}
	rng := rand.New(rand.NewSource(1))

	// WHEN many durations are drawn
	for i := 0; i < 1000; i++ {
		ticks, anomaly := sampler.sampleTicks(rng)

		// THEN every duration is at least one tick and none is anomalous
		assert.False(t, anomaly)
		assert.GreaterOrEqual(t, ticks, int64(1))
		assert.Less(t, ticks, 10*TicksPerMinute)
	}
}

func TestServiceSampler_NegativeSample_ClampedAndFlagged(t *testing.T) {
	// GIVEN a degenerate distribution that always draws negative
	sampler := serviceSampler{cfg: ServiceTime{MeanMin: -5.0, StdDevMin: 0}}
	rng := rand.New(rand.NewSource(1))

	// WHEN a duration is drawn
	ticks, anomaly := sampler.sampleTicks(rng)

	// THEN it is clamped to zero and reported as an anomaly
	assert.True(t, anomaly)
	assert.Equal(t, int64(0), ticks)
}

func TestServiceSampler_TinyPositiveSample_RoundsUpToOneTick(t *testing.T) {
	// GIVEN a distribution whose draws round to under one tick
	sampler := serviceSampler{cfg: ServiceTime{MeanMin: 0.001, StdDevMin: 0}}
	rng := rand.New(rand.NewSource(1))

	ticks, anomaly := sampler.sampleTicks(rng)

	assert.False(t, anomaly)
	assert.Equal(t, int64(1), ticks)
}

func TestServiceSampler_SlowPathRaisesMean(t *testing.T) {
	// GIVEN a fast path of 0.1min with a guaranteed slow path of 2min
	fast := serviceSampler{cfg: ServiceTime{MeanMin: 0.1, StdDevMin: 0}}
	slow := serviceSampler{cfg: ServiceTime{
		MeanMin: 0.1, StdDevMin: 0,
		SlowProb: 1.0, SlowMeanMin: 2.0, SlowStdDevMin: 0,
	}}

	fastTicks, _ := fast.sampleTicks(rand.New(rand.NewSource(1)))
	slowTicks, _ := slow.sampleTicks(rand.New(rand.NewSource(1)))

	// THEN the slow path dominates the duration
	assert.Greater(t, slowTicks, fastTicks)
	assert.Equal(t, 2*TicksPerMinute, slowTicks)
}
