package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRingThenOverflow(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.Push(&Item{Project: "a"}))
	require.True(t, q.Push(&Item{Project: "b"}))
	require.True(t, q.Push(&Item{Project: "c"})) // spills to overflow
	assert.Equal(t, 3, q.Len())

	items := q.GetAllAvailableItems()
	require.Len(t, items, 2, "overflow items are not visible until the ring has room")

	q.Remove(items[0])
	assert.Equal(t, 2, q.Len(), "overflow item absorbed back into the ring on Remove")

	items2 := q.GetAllAvailableItems()
	require.Len(t, items2, 1)
	assert.Equal(t, "c", items2[0].Project)
}

func TestQueueStopsAtExhaustedLimiter(t *testing.T) {
	q := NewQueue(4)
	q.Push(&Item{Project: "a"})
	q.Push(&Item{Project: "b"})
	q.Push(&Item{Project: "c"})

	lim := NewConcurrencyLimiter(1)
	items := q.GetAllAvailableItems(lim)
	require.Len(t, items, 1, "limiter allows only one concurrent item")
	assert.Equal(t, "a", items[0].Project)

	// A second pop while the first is still Sending should yield nothing:
	// GetAllAvailableItems stops, not skips, once the limiter is tapped out.
	more := q.GetAllAvailableItems(lim)
	assert.Empty(t, more)
}

func TestQueueOverflowBoundDrops(t *testing.T) {
	q := NewQueue(1)
	q.MaxOverflow = 1
	require.True(t, q.Push(&Item{Project: "a"}))
	require.True(t, q.Push(&Item{Project: "b"}))
	assert.False(t, q.Push(&Item{Project: "c"}), "overflow full, item should be dropped")
	assert.Equal(t, int64(1), q.Dropped)
}
