// Package event implements the tagged event model shared by every stage of
// the ingestion-to-egress pipeline: the Log/Metric/Span/Raw union, the
// SourceBuffer arena backing their string data, and EventGroup.
package event

import "sync/atomic"

// Arena is a reference-counted buffer holding the raw bytes of one read or
// parse operation. Strings made from it with NewString are copies, not
// views into the buffer. A group of events and the batch items that later absorb
// them all hold a reference to the same Arena; it is released only when the
// last holder is done with it, mirroring the original pipeline's
// std::shared_ptr<SourceBuffer> ownership model.
type Arena struct {
	data refcount
}

type refcount struct {
	buf []byte
	n   int32
}

// NewArena creates an Arena that owns buf. Callers must not mutate buf after
// handing it to NewArena.
func NewArena(buf []byte) *Arena {
	return &Arena{data: refcount{buf: buf, n: 1}}
}

// Retain increments the arena's reference count. Every holder of a pointer
// into the arena (an EventGroup, a BatchItem that copies the group in) must
// call Retain when it takes its own reference and Release when it is done.
func (a *Arena) Retain() {
	atomic.AddInt32(&a.data.n, 1)
}

// Release decrements the reference count, freeing the backing buffer once
// it reaches zero.
func (a *Arena) Release() {
	if atomic.AddInt32(&a.data.n, -1) == 0 {
		a.data.buf = nil
	}
}

// Bytes returns the arena's backing storage.
func (a *Arena) Bytes() []byte {
	return a.data.buf
}

// NewString copies b into a fresh Go string. Go cannot alias arena bytes as
// a string without unsafe.String, so a view costs one copy at creation time;
// the resulting string is then shared freely, immutably, for the rest of
// its life the same way the original's StringView is shared zero-copy.
func (a *Arena) NewString(b []byte) string {
	return string(b)
}
