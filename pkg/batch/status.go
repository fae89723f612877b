// Package batch implements the two-level event/group batcher and its
// size/count/time flush strategies, grounded on the original pipeline's
// Batcher<T>/BatchItem<T>/FlushStrategy<T> templates.
package batch

// Status is the accounting interface an event-level batch item keeps,
// satisfied by both EventBatchStatus and SLSEventBatchStatus so Batcher can
// drive either without a type switch.
type Status interface {
	Reset(nowUnix int64)
	AddSize(n int64)
	AddCnt(n int)
	Size() int64
	Cnt() int
	CreateTime() int64
}

// EventBatchStatus tracks the accounting a size/count/time flush strategy
// needs for one accumulating batch of events: total bytes, event count, and
// the time the batch was created.
type EventBatchStatus struct {
	size       int64
	cnt        int
	createTime int64 // unix seconds
}

func (s *EventBatchStatus) Reset(nowUnix int64) {
	s.size = 0
	s.cnt = 0
	s.createTime = nowUnix
}

func (s *EventBatchStatus) AddSize(n int64) { s.size += n }
func (s *EventBatchStatus) AddCnt(n int)    { s.cnt += n }

func (s *EventBatchStatus) Size() int64       { return s.size }
func (s *EventBatchStatus) Cnt() int          { return s.cnt }
func (s *EventBatchStatus) CreateTime() int64 { return s.createTime }

// SLSEventBatchStatus adds the create-minute bucket the SLS flush strategy
// uses to force a flush across minute boundaries, matching the original's
// SLSEventBatchStatus specialization.
type SLSEventBatchStatus struct {
	EventBatchStatus
	createMinute int64
}

func (s *SLSEventBatchStatus) Reset(nowUnix int64) {
	s.EventBatchStatus.Reset(nowUnix)
	s.createMinute = nowUnix / 60
}

func (s *SLSEventBatchStatus) CreateMinute() int64 { return s.createMinute }

// GroupBatchStatus tracks the accounting for the outer group-level batch:
// total serialized size and number of event-level batch items folded in.
type GroupBatchStatus struct {
	size       int64
	groupCnt   int
	createTime int64
}

func (s *GroupBatchStatus) Reset(nowUnix int64) {
	s.size = 0
	s.groupCnt = 0
	s.createTime = nowUnix
}

func (s *GroupBatchStatus) AddSize(n int64) { s.size += n }
func (s *GroupBatchStatus) AddGroupCnt()    { s.groupCnt++ }

func (s *GroupBatchStatus) Size() int64       { return s.size }
func (s *GroupBatchStatus) GroupCnt() int     { return s.groupCnt }
func (s *GroupBatchStatus) CreateTime() int64 { return s.createTime }
