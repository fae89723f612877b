package batch

import "github.com/loongcollector/agent/pkg/event"

// NewStatus constructs a fresh, zeroed Status value for an event batch
// item: SLS-bound batchers pass NewSLSStatus, everyone else NewEventStatus.
type NewStatus func(nowUnix int64) Status

func NewEventStatus(nowUnix int64) Status {
	s := &EventBatchStatus{}
	s.Reset(nowUnix)
	return s
}

func NewSLSStatus(nowUnix int64) Status {
	s := &SLSEventBatchStatus{}
	s.Reset(nowUnix)
	return s
}

// EventBatchItem accumulates events that share one tag-hash key (typically
// one source host/logstore identity) until a flush strategy says it is
// time to hand them off, either directly to a sender queue or up into an
// enclosing GroupBatchItem.
//
// Grounded on BatchItem.h's EventBatchItem<T>.
type EventBatchItem struct {
	Key     uint64
	Tags    *event.SizedTags
	Arenas  map[*event.Arena]struct{}
	Events  []event.Event
	Status  Status
	newStat NewStatus
	nowUnix func() int64
}

// NewEventBatchItem returns an empty item for key.
func NewEventBatchItem(key uint64, tags *event.SizedTags, newStat NewStatus, nowUnix func() int64) *EventBatchItem {
	return &EventBatchItem{
		Key:     key,
		Tags:    tags,
		Arenas:  make(map[*event.Arena]struct{}),
		Status:  newStat(nowUnix()),
		newStat: newStat,
		nowUnix: nowUnix,
	}
}

// Add appends ev (from the given arena, deduplicated per-item so a shared
// arena is retained only once no matter how many of its events land here)
// to the item and updates its size/count accounting.
func (it *EventBatchItem) Add(ev event.Event, arena *event.Arena) {
	it.addSourceBuffer(arena)
	it.Events = append(it.Events, ev)
	it.Status.AddSize(ev.DataSize())
	it.Status.AddCnt(1)
}

func (it *EventBatchItem) addSourceBuffer(arena *event.Arena) {
	if arena == nil {
		return
	}
	if _, ok := it.Arenas[arena]; ok {
		return
	}
	arena.Retain()
	it.Arenas[arena] = struct{}{}
}

// Flush detaches the accumulated events (and the arenas holding their
// backing storage) from it and resets it to an empty state, ready to
// accumulate the next batch. The caller takes ownership of the returned
// events and arenas and is responsible for releasing the arenas once done.
func (it *EventBatchItem) Flush() ([]event.Event, []*event.Arena) {
	events := it.Events
	arenas := make([]*event.Arena, 0, len(it.Arenas))
	for a := range it.Arenas {
		arenas = append(arenas, a)
	}
	it.Events = nil
	it.Arenas = make(map[*event.Arena]struct{})
	it.Status = it.newStat(it.nowUnix())
	return events, arenas
}

// Empty reports whether the item currently holds no events.
func (it *EventBatchItem) Empty() bool {
	return len(it.Events) == 0
}

// GroupBatchItem is the outer, group-level accumulator a Batcher folds
// flushed EventBatchItems into once group batching is enabled: one entry
// per pipeline, tracking total size across every constituent event batch.
//
// Grounded on BatchItem.h's GroupBatchItem.
type GroupBatchItem struct {
	Groups []*event.Group
	Status GroupBatchStatus
}

// NewGroupBatchItem returns an empty group item.
func NewGroupBatchItem(nowUnix int64) *GroupBatchItem {
	it := &GroupBatchItem{}
	it.Status.Reset(nowUnix)
	return it
}

// Add folds one flushed event-level group into this group item.
func (it *GroupBatchItem) Add(g *event.Group) {
	it.Groups = append(it.Groups, g)
	it.Status.AddSize(g.DataSize())
	it.Status.AddGroupCnt()
}

// Flush detaches the accumulated groups and resets the item.
func (it *GroupBatchItem) Flush(nowUnix int64) []*event.Group {
	groups := it.Groups
	it.Groups = nil
	it.Status.Reset(nowUnix)
	return groups
}

func (it *GroupBatchItem) Empty() bool {
	return len(it.Groups) == 0
}
