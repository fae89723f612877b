// Package checkpoint stitches together the {read_offset, read_length} pair
// an input commits once the batch it produced has been durably flushed,
// implementing the exactly-once passthrough described by spec.md §4 and
// §8.
package checkpoint

import "github.com/loongcollector/agent/pkg/event"

// Range is the contiguous input read range committed once every event
// drawn from it has been sent.
type Range struct {
	Key    string
	Offset int64
	Length int64
}

// Stitch computes the checkpoint covering every event in groups that
// carries one, taking the minimum offset and the maximum offset+length
// across all of them so the committed range covers every event even if
// they arrived out of order within the flushed batch.
func Stitch(groups []*event.Group) []Range {
	byKey := make(map[string]*Range)
	order := make([]string, 0)

	for _, g := range groups {
		cp := g.ExactlyOnceCheckpoint
		if cp == nil {
			continue
		}
		r, ok := byKey[cp.Key]
		if !ok {
			r = &Range{Key: cp.Key, Offset: cp.ReadOffset, Length: cp.ReadLength}
			byKey[cp.Key] = r
			order = append(order, cp.Key)
			continue
		}
		end := r.Offset + r.Length
		newEnd := cp.ReadOffset + cp.ReadLength
		if cp.ReadOffset < r.Offset {
			r.Offset = cp.ReadOffset
		}
		if newEnd > end {
			end = newEnd
		}
		r.Length = end - r.Offset
	}

	out := make([]Range, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}
