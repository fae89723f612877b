package batch

// EventFlushStrategy decides when an event-level BatchItem must flush: any
// of a size, count or time trigger forces a flush.
//
// Grounded on FlushStrategy.h's EventFlushStrategy<T> template.
type EventFlushStrategy struct {
	MaxSizeBytes  int64
	MaxCnt        int
	TimeoutSecs   int64
	nowUnix       func() int64
	needFlushTime func(Status) bool
}

// NewEventFlushStrategy builds a flush strategy with the default
// NeedFlushByTime predicate (elapsed >= TimeoutSecs since batch creation).
func NewEventFlushStrategy(maxSize int64, maxCnt int, timeoutSecs int64, nowUnix func() int64) *EventFlushStrategy {
	return &EventFlushStrategy{MaxSizeBytes: maxSize, MaxCnt: maxCnt, TimeoutSecs: timeoutSecs, nowUnix: nowUnix}
}

// WithTimePredicate overrides the time trigger, used by SLS batches to also
// flush across a wall-clock minute boundary (NeedFlushByTime specialization
// in the original).
func (s *EventFlushStrategy) WithTimePredicate(fn func(Status) bool) *EventFlushStrategy {
	s.needFlushTime = fn
	return s
}

func (s *EventFlushStrategy) NeedFlushBySize(curSize int64) bool {
	return s.MaxSizeBytes > 0 && curSize >= s.MaxSizeBytes
}

func (s *EventFlushStrategy) NeedFlushByCnt(curCnt int) bool {
	return s.MaxCnt > 0 && curCnt >= s.MaxCnt
}

// SizeReachingUpperLimit reports whether adding addSize more bytes to a
// batch already holding curSize bytes would exceed the size ceiling. The
// Batcher does not call it; its size trigger is NeedFlushBySize, checked
// after the event is added.
func (s *EventFlushStrategy) SizeReachingUpperLimit(curSize, addSize int64) bool {
	return s.MaxSizeBytes > 0 && curSize+addSize > s.MaxSizeBytes
}

// NeedFlushByTime reports whether status must flush purely due to elapsed
// time, using the overridden predicate if one was installed.
func (s *EventFlushStrategy) NeedFlushByTime(status Status) bool {
	if s.needFlushTime != nil {
		return s.needFlushTime(status)
	}
	return s.TimeoutSecs > 0 && s.nowUnix()-status.CreateTime() >= s.TimeoutSecs
}

// NeedFlushBySLSMinute is the SLSEventBatchStatus time predicate: flush
// whenever the current minute differs from the batch's create-minute, in
// addition to the plain elapsed-time trigger, matching the original's
// EventFlushStrategy<SLSEventBatchStatus>::NeedFlushByTime specialization.
func NeedFlushBySLSMinute(timeoutSecs int64, nowUnix func() int64) func(Status) bool {
	return func(status Status) bool {
		sls, ok := status.(*SLSEventBatchStatus)
		if !ok {
			return timeoutSecs > 0 && nowUnix()-status.CreateTime() >= timeoutSecs
		}
		now := nowUnix()
		if timeoutSecs > 0 && now-sls.CreateTime() >= timeoutSecs {
			return true
		}
		return now/60 != sls.CreateMinute()
	}
}

// GroupFlushStrategy decides when the outer group-level batch item must
// flush: size or group-count triggers, plus its own elapsed-time trigger
// (GroupFlushStrategy::NeedFlushByTime in the original), registered with
// the TimeoutFlushManager under key 0 so the group ages out on its own
// schedule instead of only as a byproduct of an event item folding in.
type GroupFlushStrategy struct {
	MaxSizeBytes int64
	MaxGroupCnt  int
	TimeoutSecs  int64
	nowUnix      func() int64
}

func NewGroupFlushStrategy(maxSize int64, maxGroupCnt int, timeoutSecs int64, nowUnix func() int64) *GroupFlushStrategy {
	return &GroupFlushStrategy{MaxSizeBytes: maxSize, MaxGroupCnt: maxGroupCnt, TimeoutSecs: timeoutSecs, nowUnix: nowUnix}
}

func (s *GroupFlushStrategy) NeedFlushBySize(curSize int64) bool {
	return s.MaxSizeBytes > 0 && curSize >= s.MaxSizeBytes
}

func (s *GroupFlushStrategy) NeedFlushByCnt(curGroupCnt int) bool {
	return s.MaxGroupCnt > 0 && curGroupCnt >= s.MaxGroupCnt
}

// NeedFlushByTime reports whether status must flush purely due to elapsed
// time since the group item was created or last flushed, matching
// GroupFlushStrategy::NeedFlushByTime. Should be called before folding a
// new event-level batch into the group item.
func (s *GroupFlushStrategy) NeedFlushByTime(status *GroupBatchStatus) bool {
	return s.TimeoutSecs > 0 && s.nowUnix()-status.CreateTime() >= s.TimeoutSecs
}
