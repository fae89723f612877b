package batch

import (
	"sync"

	"github.com/loongcollector/agent/pkg/event"
)

// Result carries the event.Groups a Batcher operation produced, ready to be
// handed to the sender queue.
type Result struct {
	Groups []*event.Group
}

func (r *Result) add(g *event.Group) {
	if g == nil {
		return
	}
	r.Groups = append(r.Groups, g)
}

// Batcher is the two-level event/group batcher: events are first folded
// into a per-tag-hash EventBatchItem, and if group batching is enabled,
// flushed event batches are folded again into a single GroupBatchItem
// before reaching the sender queue.
//
// Grounded on Batcher.h's Batcher<T> template.
type Batcher struct {
	mu sync.Mutex

	items     map[uint64]*EventBatchItem
	groupItem *GroupBatchItem

	eventStrategy *EventFlushStrategy
	groupStrategy *GroupFlushStrategy
	groupEnabled  bool

	newStatus NewStatus
	nowUnix   func() int64

	pipelineName  string
	flusherNodeID string
	timeoutMgr    *TimeoutFlushManager
}

// New constructs a Batcher. timeoutSecs is split between the group level
// (timeoutSecs/2, when group batching is enabled) and the event level (the
// remainder), matching Batcher<T>::Init.
func New(
	pipelineName, flusherNodeID string,
	timeoutSecs int64,
	groupBatchingEnabled bool,
	maxEventSize int64, maxEventCnt int,
	maxGroupSize int64, maxGroupCnt int,
	newStatus NewStatus,
	nowUnix func() int64,
	timeoutMgr *TimeoutFlushManager,
) *Batcher {
	eventTimeout := timeoutSecs
	groupTimeout := int64(0)
	if groupBatchingEnabled {
		groupTimeout = timeoutSecs / 2
		eventTimeout = timeoutSecs - groupTimeout
	}

	b := &Batcher{
		items:         make(map[uint64]*EventBatchItem),
		eventStrategy: NewEventFlushStrategy(maxEventSize, maxEventCnt, eventTimeout, nowUnix),
		groupStrategy: NewGroupFlushStrategy(maxGroupSize, maxGroupCnt, groupTimeout, nowUnix),
		groupEnabled:  groupBatchingEnabled,
		newStatus:     newStatus,
		nowUnix:       nowUnix,
		pipelineName:  pipelineName,
		flusherNodeID: flusherNodeID,
		timeoutMgr:    timeoutMgr,
	}
	if groupBatchingEnabled {
		b.groupItem = NewGroupBatchItem(nowUnix())
	}
	return b
}

// WithEventTimePredicate overrides the event-level time trigger (used for
// the SLS minute-boundary variant).
func (b *Batcher) WithEventTimePredicate(fn func(Status) bool) *Batcher {
	b.eventStrategy.WithTimePredicate(fn)
	return b
}

// Add folds one event, tagged with key/tags and backed by arena, into the
// batcher, flushing and cascading as necessary. The returned Result holds
// any event.Group(s) that became ready to send as a side effect.
//
// Grounded on Batcher<T>::Add: the item's time trigger is checked before
// the event is added (so a stale item flushes and the triggering event
// starts a fresh one), while size/count triggers are checked after.
func (b *Batcher) Add(key uint64, tags *event.SizedTags, ev event.Event, arena *event.Arena) *Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &Result{}
	item, ok := b.items[key]
	if !ok {
		item = NewEventBatchItem(key, tags, b.newStatus, b.nowUnix)
		b.items[key] = item
	}

	if !item.Empty() && b.eventStrategy.NeedFlushByTime(item.Status) {
		b.flushEventItemWithGroupTimeCheckLocked(item, res)
	}

	if item.Empty() {
		item.Tags = tags
		if b.timeoutMgr != nil {
			b.timeoutMgr.UpdateRecord(b.pipelineName, b.flusherNodeID, key, b.eventDeadline())
		}
	}

	item.Add(ev, arena)

	if b.eventStrategy.NeedFlushBySize(item.Status.Size()) || b.eventStrategy.NeedFlushByCnt(item.Status.Cnt()) {
		b.foldEventItemLocked(item, res)
	}
	return res
}

func (b *Batcher) eventDeadline() int64 {
	return b.nowUnix() + b.eventStrategy.TimeoutSecs
}

func (b *Batcher) groupDeadline() int64 {
	return b.nowUnix() + b.groupStrategy.TimeoutSecs
}

// foldEventItemLocked flushes one event-level item, producing an
// event.Group, and either adds it straight to res (group batching off) or
// folds it into the group item, cascading into a group-level flush if the
// group item itself has now crossed its size/count threshold.
func (b *Batcher) foldEventItemLocked(item *EventBatchItem, res *Result) {
	events, arenas := item.Flush()
	if len(events) == 0 {
		return
	}
	g := &event.Group{Tags: item.Tags, Events: events}
	if len(arenas) > 0 {
		g.Arena = arenas[0]
		for _, a := range arenas[1:] {
			a.Release()
		}
	}

	if !b.groupEnabled {
		res.add(g)
		return
	}
	b.groupItem.Add(g)
	if b.groupStrategy.NeedFlushBySize(b.groupItem.Status.Size()) ||
		b.groupStrategy.NeedFlushByCnt(b.groupItem.Status.GroupCnt()) {
		b.flushGroupItemLocked(res)
	}
}

// flushEventItemWithGroupTimeCheckLocked folds item exactly as
// foldEventItemLocked does, but first flushes the group item if its own
// time trigger has fired and (re)registers its timeout deadline once
// empty. Used by every path that may fold a stale item into the group
// item except the plain post-add size/count trigger inside Add, matching
// the group-time-check-before-fold the original runs in its time-triggered
// Add branch, FlushQueue and FlushAll.
func (b *Batcher) flushEventItemWithGroupTimeCheckLocked(item *EventBatchItem, res *Result) {
	if b.groupEnabled {
		if !b.groupItem.Empty() && b.groupStrategy.NeedFlushByTime(&b.groupItem.Status) {
			b.flushGroupItemLocked(res)
		}
		if b.groupItem.Empty() && b.timeoutMgr != nil {
			b.timeoutMgr.UpdateRecord(b.pipelineName, b.flusherNodeID, 0, b.groupDeadline())
		}
	}
	b.foldEventItemLocked(item, res)
}

func (b *Batcher) flushGroupItemLocked(res *Result) {
	groups := b.groupItem.Flush(b.nowUnix())
	for _, g := range groups {
		res.add(g)
	}
}

// FlushQueue force-flushes the batch item identified by key: key 0 flushes
// the group-level item directly, any other key flushes that event-level
// item (cascading into the group item exactly as a threshold-triggered
// flush would). Used in response to a TimeoutFlushManager deadline.
func (b *Batcher) FlushQueue(key uint64) *Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &Result{}
	if key == 0 {
		if b.groupEnabled && !b.groupItem.Empty() {
			b.flushGroupItemLocked(res)
		}
		return res
	}

	item, ok := b.items[key]
	if !ok || item.Empty() {
		return res
	}
	b.flushEventItemWithGroupTimeCheckLocked(item, res)
	return res
}

// FlushAll force-flushes every event-level item and the group item,
// producing every event.Group still pending. Used on pipeline Stop.
func (b *Batcher) FlushAll() *Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &Result{}
	for _, item := range b.items {
		if !item.Empty() {
			b.flushEventItemWithGroupTimeCheckLocked(item, res)
		}
	}
	if b.groupEnabled && !b.groupItem.Empty() {
		b.flushGroupItemLocked(res)
	}
	return res
}
