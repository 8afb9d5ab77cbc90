package sim

import (
	"container/heap"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_OrdersByTimestamp(t *testing.T) {
	// GIVEN events pushed at ticks 100, 10, 50
	eq := make(eventQueue, 0)
	heap.Init(&eq)
	heap.Push(&eq, scheduledEvent{ev: &MetricsTickEvent{time: 100}, seq: 1})
	heap.Push(&eq, scheduledEvent{ev: &MetricsTickEvent{time: 10}, seq: 2})
	heap.Push(&eq, scheduledEvent{ev: &MetricsTickEvent{time: 50}, seq: 3})

	// WHEN all events are popped
	var got []int64
	for eq.Len() > 0 {
		got = append(got, heap.Pop(&eq).(scheduledEvent).ev.Timestamp())
	}

	// THEN they come out in timestamp order
	assert.Equal(t, []int64{10, 50, 100}, got)
}

func TestEventQueue_TieBreaksByInsertionOrder(t *testing.T) {
	// GIVEN three events scheduled for the same tick in a known order
	eq := make(eventQueue, 0)
	heap.Init(&eq)
	first := &ArrivalEvent{time: 50}
	second := &VendorVisitEvent{time: 50, fan: 7}
	third := &ExitReleaseEvent{time: 50}
	heap.Push(&eq, scheduledEvent{ev: first, seq: 1})
	heap.Push(&eq, scheduledEvent{ev: second, seq: 2})
	heap.Push(&eq, scheduledEvent{ev: third, seq: 3})

	// WHEN all events are popped
	// THEN dispatch order matches insertion order exactly
	require.Same(t, Event(first), heap.Pop(&eq).(scheduledEvent).ev)
	require.Same(t, Event(second), heap.Pop(&eq).(scheduledEvent).ev)
	require.Same(t, Event(third), heap.Pop(&eq).(scheduledEvent).ev)
}

func TestSchedule_PastTimestamp_ReturnsInvalidScheduleError(t *testing.T) {
	// GIVEN a simulator whose clock has advanced to tick 100
	s, err := NewSimulator(DefaultConfig())
	require.NoError(t, err)
	s.Clock = 100

	// WHEN an event is scheduled for tick 50
	err = s.Schedule(&MetricsTickEvent{time: 50})

	// THEN it is rejected with an InvalidScheduleError carrying both ticks
	var schedErr *InvalidScheduleError
	require.True(t, errors.As(err, &schedErr))
	assert.Equal(t, int64(100), schedErr.Clock)
	assert.Equal(t, int64(50), schedErr.Timestamp)
}

func TestSchedule_CurrentTick_Accepted(t *testing.T) {
	// GIVEN a simulator at tick 100
	s, err := NewSimulator(DefaultConfig())
	require.NoError(t, err)
	s.Clock = 100

	// WHEN an event is scheduled for the current tick
	// THEN it is accepted
	assert.NoError(t, s.Schedule(&MetricsTickEvent{time: 100}))
}
