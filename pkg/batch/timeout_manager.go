package batch

import (
	"container/heap"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const dayDuration = 24 * time.Hour

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

// FlushFunc is called when a record's deadline is reached; it should flush
// the corresponding batch item and route the result downstream.
type FlushFunc func(pipelineName, flusherNodeID string, key uint64)

// TimeoutFlushManager drives every pipeline's time-based flush deadlines
// from a single goroutine and a min-heap, rather than one timer per batch
// item, grounded on the TimeoutFlushManager the original Batcher.h leans on
// via UpdateRecord.
type TimeoutFlushManager struct {
	mu       sync.Mutex
	byID     map[recordID]*record
	heap     recordHeap
	clock    clock.Clock
	flush    FlushFunc
	logger   *zap.Logger
	wake     chan struct{}
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

type recordID struct {
	pipelineName  string
	flusherNodeID string
	key           uint64
}

type record struct {
	id       recordID
	deadline int64 // unix seconds
	index    int
}

// NewTimeoutFlushManager constructs a manager that calls flush when a
// record's deadline elapses, driven by clk (inject a *clock.Mock in tests).
func NewTimeoutFlushManager(clk clock.Clock, flush FlushFunc, logger *zap.Logger) *TimeoutFlushManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeoutFlushManager{
		byID:   make(map[recordID]*record),
		clock:  clk,
		flush:  flush,
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run drives the manager until Stop is called. Intended to run in its own
// goroutine for the lifetime of the process.
func (m *TimeoutFlushManager) Run() {
	defer close(m.done)
	timer := m.clock.Timer(dayDuration)
	defer timer.Stop()

	for {
		m.mu.Lock()
		var wait = dayDuration
		if len(m.heap) > 0 {
			d := m.heap[0].deadline - m.clock.Now().Unix()
			if d < 0 {
				d = 0
			}
			wait = secondsToDuration(d)
		}
		m.mu.Unlock()
		timer.Reset(wait)

		select {
		case <-m.stop:
			return
		case <-m.wake:
			continue
		case <-timer.C:
			m.fireExpired()
		}
	}
}

func (m *TimeoutFlushManager) fireExpired() {
	now := m.clock.Now().Unix()
	var due []recordID
	m.mu.Lock()
	for len(m.heap) > 0 && m.heap[0].deadline <= now {
		r := heap.Pop(&m.heap).(*record)
		delete(m.byID, r.id)
		due = append(due, r.id)
	}
	m.mu.Unlock()

	for _, id := range due {
		m.flush(id.pipelineName, id.flusherNodeID, id.key)
	}
}

// UpdateRecord sets (replacing, not stacking) the deadline for one batch
// item's key within a pipeline/flusher identity.
func (m *TimeoutFlushManager) UpdateRecord(pipelineName, flusherNodeID string, key uint64, deadlineUnix int64) {
	id := recordID{pipelineName, flusherNodeID, key}
	m.mu.Lock()
	if r, ok := m.byID[id]; ok {
		r.deadline = deadlineUnix
		heap.Fix(&m.heap, r.index)
	} else {
		r := &record{id: id, deadline: deadlineUnix}
		m.byID[id] = r
		heap.Push(&m.heap, r)
	}
	m.mu.Unlock()
	m.nudge()
}

// RemoveConfigPipeline cancels every record belonging to pipelineName, e.g.
// when that pipeline is stopped.
func (m *TimeoutFlushManager) RemoveConfigPipeline(pipelineName string) {
	m.mu.Lock()
	for id, r := range m.byID {
		if id.pipelineName == pipelineName {
			delete(m.byID, id)
			heap.Remove(&m.heap, r.index)
		}
	}
	m.mu.Unlock()
	m.nudge()
}

func (m *TimeoutFlushManager) nudge() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Stop halts Run and waits for it to return.
func (m *TimeoutFlushManager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

type recordHeap []*record

func (h recordHeap) Len() int            { return len(h) }
func (h recordHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h recordHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *recordHeap) Push(x interface{}) { r := x.(*record); r.index = len(*h); *h = append(*h, r) }
func (h *recordHeap) Pop() interface{} {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.index = -1
	*h = old[:n-1]
	return r
}
