package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/event"
)

func fixedClock(t int64) func() int64 {
	return func() int64 { return t }
}

func TestBatcherFlushesBySize(t *testing.T) {
	now := int64(1000)
	b := New("p1", "flusher1", 3600, false, 10, 0, 0, 0, NewEventStatus, fixedClock(now), nil)

	ev1 := &event.RawEvent{Data: make([]byte, 6)}
	res := b.Add(1, nil, ev1, nil)
	assert.Empty(t, res.Groups, "single small event should not trigger a flush")

	ev2 := &event.RawEvent{Data: make([]byte, 6)}
	res = b.Add(1, nil, ev2, nil)
	require.Len(t, res.Groups, 1, "second event should push size over threshold and flush")
	assert.Len(t, res.Groups[0].Events, 2)
}

func TestBatcherFlushesByCount(t *testing.T) {
	now := int64(1000)
	b := New("p1", "f1", 3600, false, 0, 2, 0, 0, NewEventStatus, fixedClock(now), nil)

	res := b.Add(1, nil, &event.RawEvent{Data: []byte("a")}, nil)
	assert.Empty(t, res.Groups)
	res = b.Add(1, nil, &event.RawEvent{Data: []byte("b")}, nil)
	require.Len(t, res.Groups, 1)
	assert.Len(t, res.Groups[0].Events, 2)
}

func TestBatcherGroupCascade(t *testing.T) {
	now := int64(1000)
	b := New("p1", "f1", 3600, true, 0, 1, 0, 2, NewEventStatus, fixedClock(now), nil)

	res := b.Add(1, nil, &event.RawEvent{Data: []byte("a")}, nil)
	assert.Empty(t, res.Groups, "event flush folds into the group item, not yet returned")

	res = b.Add(2, nil, &event.RawEvent{Data: []byte("b")}, nil)
	require.Len(t, res.Groups, 2, "second distinct key flushes its own event item and tips the group item over MaxGroupCnt, draining both folded groups")
}

func TestBatcherFlushAll(t *testing.T) {
	now := int64(1000)
	b := New("p1", "f1", 3600, false, 0, 0, 0, 0, NewEventStatus, fixedClock(now), nil)

	b.Add(1, nil, &event.RawEvent{Data: []byte("a")}, nil)
	b.Add(2, nil, &event.RawEvent{Data: []byte("b")}, nil)

	res := b.FlushAll()
	assert.Len(t, res.Groups, 2)
}

func TestEventFlushStrategySLSMinuteBoundary(t *testing.T) {
	cur := int64(119) // second 59 of minute 1
	pred := NeedFlushBySLSMinute(3600, func() int64 { return cur })

	status := &SLSEventBatchStatus{}
	status.Reset(100) // minute 1 (100/60 == 1)

	assert.False(t, pred(status), "still within minute 1")
	cur = 121 // now minute 2
	assert.True(t, pred(status), "crossing into minute 2 forces a flush")
}

func TestBatcherTimeTriggerFlushesStaleItemBeforeAdd(t *testing.T) {
	cur := int64(1000)
	b := New("p1", "f1", 5, false, 0, 0, 0, 0, NewEventStatus, func() int64 { return cur }, nil)

	res := b.Add(1, nil, &event.RawEvent{Data: []byte("a")}, nil)
	assert.Empty(t, res.Groups, "first event just starts the batch")

	cur += 10 // past the 5s event timeout
	res = b.Add(1, nil, &event.RawEvent{Data: []byte("b")}, nil)
	require.Len(t, res.Groups, 1, "the stale item must flush on its own before the new event is folded in")
	assert.Len(t, res.Groups[0].Events, 1, "only the first event belongs to the flushed batch")

	res = b.FlushAll()
	require.Len(t, res.Groups, 1, "the second event started a fresh item and flushes separately")
	assert.Len(t, res.Groups[0].Events, 1)
}

func TestBatcherGroupFlushStrategyNeedFlushByTime(t *testing.T) {
	cur := int64(1000)
	s := NewGroupFlushStrategy(0, 0, 5, func() int64 { return cur })

	status := &GroupBatchStatus{}
	status.Reset(1000)

	assert.False(t, s.NeedFlushByTime(status), "not yet past the 5s timeout")
	cur = 1006
	assert.True(t, s.NeedFlushByTime(status), "past the 5s timeout")
}

func TestBatcherFlushQueueZeroFlushesGroupItem(t *testing.T) {
	now := int64(1000)
	b := New("p1", "f1", 3600, true, 0, 1, 0, 100, NewEventStatus, fixedClock(now), nil)

	res := b.Add(1, nil, &event.RawEvent{Data: []byte("a")}, nil)
	assert.Empty(t, res.Groups, "the event item's flush folds into the group item, not yet returned")

	res = b.FlushQueue(0)
	require.Len(t, res.Groups, 1, "flushing key 0 drains the group-level item directly, not an event-level item keyed 0")
}
