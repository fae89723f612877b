package event

// Group is a batch of Events sharing one set of group-level tags (e.g. the
// host/source/topic identifying where they came from) and one arena.
type Group struct {
	Tags   *SizedTags
	Events []Event
	Arena  *Arena

	// ExactlyOnceCheckpoint, when non-nil, identifies the input-side
	// read position this group was produced from, so the flusher can
	// report completion once the group is durably sent.
	ExactlyOnceCheckpoint *Checkpoint
}

// Checkpoint marks a contiguous input range a Group was read from, used to
// stitch together the read_offset/read_length pair the producer commits
// once the corresponding flush succeeds.
type Checkpoint struct {
	Key        string
	ReadOffset int64
	ReadLength int64
}

// NewGroup returns an empty Group over tags, holding one reference to arena.
func NewGroup(tags *SizedTags, arena *Arena) *Group {
	if arena != nil {
		arena.Retain()
	}
	return &Group{Tags: tags, Arena: arena}
}

// Add appends ev to the group.
func (g *Group) Add(ev Event) {
	g.Events = append(g.Events, ev)
}

// DataSize returns the group tag size plus the sum of every event's size.
func (g *Group) DataSize() int64 {
	var size int64
	if g.Tags != nil {
		size += g.Tags.DataSize()
	}
	for _, e := range g.Events {
		size += e.DataSize()
	}
	return size
}

// Release drops this Group's reference to its arena. Call once the group
// (or the last copy sharing its arena) is no longer needed.
func (g *Group) Release() {
	if g.Arena != nil {
		g.Arena.Release()
	}
}

// ShallowCopy returns a Group sharing the same Tags, Events slice and Arena
// as g, retaining an additional arena reference. Used when a router match
// fans the same group out to more than one flusher: every match but the
// last gets a shallow copy, the last takes ownership of g itself.
func (g *Group) ShallowCopy() *Group {
	if g.Arena != nil {
		g.Arena.Retain()
	}
	return &Group{
		Tags:                  g.Tags,
		Events:                g.Events,
		Arena:                 g.Arena,
		ExactlyOnceCheckpoint: g.ExactlyOnceCheckpoint,
	}
}
