package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

func testPool() *ResourcePool {
	return NewResourcePool(
		StageCaps{Security: 2, Turnstile: 1, Vendor: 1, Exit: 1},
		StageCaps{Security: 4, Turnstile: 2, Vendor: 3, Exit: 2},
	)
}

func TestResourcePool_AcquireGrantsUntilCapacity(t *testing.T) {
	// GIVEN a security stage with two slots
	pool := testPool()

	// WHEN three fans request slots
	// THEN the first two are granted and the third queues
	assert.True(t, pool.Acquire(telemetry.StageSecurity, 0))
	assert.True(t, pool.Acquire(telemetry.StageSecurity, 1))
	assert.False(t, pool.Acquire(telemetry.StageSecurity, 2))
	assert.Equal(t, 2, pool.Active(telemetry.StageSecurity))
	assert.Equal(t, 1, pool.QueueLen(telemetry.StageSecurity))
}

func TestResourcePool_ReleaseGrantsHeadOfLine(t *testing.T) {
	// GIVEN fans 0,1 in service and fans 2,3 waiting in order
	pool := testPool()
	pool.Acquire(telemetry.StageSecurity, 0)
	pool.Acquire(telemetry.StageSecurity, 1)
	pool.Acquire(telemetry.StageSecurity, 2)
	pool.Acquire(telemetry.StageSecurity, 3)

	// WHEN fan 1 finishes
	next, ok := pool.Release(telemetry.StageSecurity, 1)

	// THEN the freed slot goes to fan 2, the head of the line
	require.True(t, ok)
	assert.Equal(t, 2, next)
	assert.Equal(t, 2, pool.Active(telemetry.StageSecurity))
	assert.Equal(t, 1, pool.QueueLen(telemetry.StageSecurity))

	// AND the next release grants fan 3
	next, ok = pool.Release(telemetry.StageSecurity, 0)
	require.True(t, ok)
	assert.Equal(t, 3, next)
}

func TestResourcePool_ReleaseEmptyLine_NoGrant(t *testing.T) {
	pool := testPool()
	pool.Acquire(telemetry.StageExit, 5)

	_, ok := pool.Release(telemetry.StageExit, 5)

	assert.False(t, ok)
	assert.Equal(t, 0, pool.Active(telemetry.StageExit))
}

func TestResourcePool_ReleaseWithoutSlot_Panics(t *testing.T) {
	pool := testPool()
	assert.Panics(t, func() { pool.Release(telemetry.StageVendor, 99) })
}

func TestResourcePool_RaiseCapacity_Steps(t *testing.T) {
	// GIVEN a vendor stage at capacity 1 with max 3
	pool := testPool()

	// WHEN capacity is raised by one
	ch := pool.RaiseCapacity(telemetry.StageVendor, 1)

	// THEN the change is recorded unclamped
	assert.Equal(t, telemetry.CapacityChange{
		Stage: telemetry.StageVendor, Before: 1, After: 2, Saturated: false,
	}, ch)
	assert.Equal(t, 2, pool.Capacity(telemetry.StageVendor))
}

func TestResourcePool_RaiseCapacity_ClampsAtMax(t *testing.T) {
	// GIVEN a turnstile stage at capacity 1 with max 2
	pool := testPool()

	// WHEN a step of 10 is requested
	ch := pool.RaiseCapacity(telemetry.StageTurnstile, 10)

	// THEN capacity clamps at the maximum and the change reports saturation
	assert.Equal(t, 2, ch.After)
	assert.True(t, ch.Saturated)
	assert.Equal(t, 2, pool.Capacity(telemetry.StageTurnstile))

	// AND a further raise stays clamped
	ch = pool.RaiseCapacity(telemetry.StageTurnstile, 1)
	assert.Equal(t, 2, ch.Before)
	assert.Equal(t, 2, ch.After)
	assert.True(t, ch.Saturated)
}

func TestResourcePool_RaisedCapacityDrainsLine(t *testing.T) {
	// GIVEN two fans waiting behind one exit gate
	pool := testPool()
	pool.Acquire(telemetry.StageExit, 0)
	pool.Acquire(telemetry.StageExit, 1)
	pool.Acquire(telemetry.StageExit, 2)
	require.Equal(t, 2, pool.QueueLen(telemetry.StageExit))

	// WHEN capacity rises to the maximum and the line drains
	pool.RaiseCapacity(telemetry.StageExit, 1)
	grants := drainLine(pool, telemetry.StageExit)

	// THEN exactly one waiting fan gets the new slot, FIFO
	require.Len(t, grants, 1)
	assert.Equal(t, grant{fan: 1, stage: telemetry.StageExit}, grants[0])
	assert.Equal(t, 2, pool.Active(telemetry.StageExit))
	assert.Equal(t, 1, pool.QueueLen(telemetry.StageExit))
}
