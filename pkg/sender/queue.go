// Package sender implements the per-flusher sender queue: a bounded ring
// buffer with an unbounded overflow FIFO, drained under a rate limiter and
// per-destination concurrency limiters, grounded on
// core/pipeline/queue/SenderQueue.cpp.
package sender

import (
	"container/list"
	"sync"

	"github.com/loongcollector/agent/pkg/event"
)

// ItemStatus is the lifecycle state of one queued item.
type ItemStatus int

const (
	Idle ItemStatus = iota
	Sending
)

// Item is one unit of sender-queue work: a serialized, compressed payload
// plus enough identity to route it and account for its limiters.
type Item struct {
	Group       *event.Group
	Payload     []byte
	Project     string
	Region      string
	Logstore    string
	TryCount    int
	Status      ItemStatus
	RawByteSize int64
}

// Queue is a fixed-capacity ring buffer backing an unbounded overflow FIFO:
// Push writes into the ring while there is room, and spills into the
// overflow list once full; Remove compacts the ring and absorbs overflow
// items back into it. Grounded on SenderQueue.cpp's Push/Remove/
// GetAllAvailableItems.
type Queue struct {
	mu sync.Mutex

	ring     []*Item
	readIdx  int
	writeIdx int
	count    int

	overflow *list.List

	// MaxOverflow bounds the overflow FIFO; 0 means unbounded, matching
	// the original. A safer deployment should set this and watch
	// Dropped, per spec.md's flagged redesign direction (see
	// DESIGN.md Open Question log).
	MaxOverflow int
	Dropped     int64
}

// NewQueue returns a Queue whose ring holds capacity items before spilling
// to the overflow FIFO.
func NewQueue(capacity int) *Queue {
	return &Queue{ring: make([]*Item, capacity), overflow: list.New()}
}

// Push enqueues it, placing it in the ring if there is room or appending to
// the overflow FIFO otherwise. Returns false (without enqueuing) if the
// overflow FIFO has a configured bound and is full.
func (q *Queue) Push(it *Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count < len(q.ring) {
		q.ring[q.writeIdx] = it
		q.writeIdx = (q.writeIdx + 1) % len(q.ring)
		q.count++
		return true
	}
	if q.MaxOverflow > 0 && q.overflow.Len() >= q.MaxOverflow {
		q.Dropped++
		return false
	}
	q.overflow.PushBack(it)
	return true
}

// GetAllAvailableItems walks the ring from its read cursor, marking every
// Idle item Sending and returning it, until it either exhausts the ring or
// a limiter reports it is out of budget — at which point it stops, rather
// than skipping over the blocked item, matching GetAllAvailableItems's
// "stop at first unavailable" discipline.
func (q *Queue) GetAllAvailableItems(limiters ...Limiter) []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*Item
	idx := q.readIdx
	for i := 0; i < q.count; i++ {
		it := q.ring[idx]
		if it != nil && it.Status == Idle {
			if !acquireAll(limiters, it) {
				break
			}
			it.Status = Sending
			out = append(out, it)
		}
		idx = (idx + 1) % len(q.ring)
	}
	return out
}

func acquireAll(limiters []Limiter, it *Item) bool {
	acquired := make([]Limiter, 0, len(limiters))
	for _, l := range limiters {
		if !l.TryAcquire(it) {
			for _, a := range acquired {
				a.Release(it)
			}
			return false
		}
		acquired = append(acquired, l)
	}
	return true
}

// Remove deletes the completed item at the ring's read cursor (the only
// position a caller should ever remove from, since items complete in the
// order GetAllAvailableItems handed them out), compacting the ring and
// pulling the next overflow item in if there is room.
func (q *Queue) Remove(it *Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count > 0 && q.ring[q.readIdx] == it {
		q.ring[q.readIdx] = nil
		q.readIdx = (q.readIdx + 1) % len(q.ring)
		q.count--
	} else {
		// Fell out of order (e.g. a retry completed after a later
		// item): scan and clear by identity instead.
		idx := q.readIdx
		for i := 0; i < q.count; i++ {
			if q.ring[idx] == it {
				q.ring[idx] = nil
				break
			}
			idx = (idx + 1) % len(q.ring)
		}
	}

	if q.overflow.Len() > 0 && q.count < len(q.ring) {
		front := q.overflow.Remove(q.overflow.Front()).(*Item)
		q.ring[q.writeIdx] = front
		q.writeIdx = (q.writeIdx + 1) % len(q.ring)
		q.count++
	}
}

// Len reports the number of items currently held across the ring and the
// overflow FIFO.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count + q.overflow.Len()
}

// Limiter gates whether an Item may start sending; RateLimiter and
// ConcurrencyLimiter both implement it.
type Limiter interface {
	TryAcquire(it *Item) bool
	Release(it *Item)
}
