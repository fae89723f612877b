// Package serializer implements the wire-format serializers each flusher
// uses to turn an event.Group into bytes: the hand-rolled SLS protobuf
// encoder, the Prometheus RemoteWrite WriteRequest, newline-delimited JSON,
// and the Arms span binary format.
//
// Grounded on core/pipeline/serializer/*.cpp and core/protobuf/sls/*.
package serializer

// Protobuf wire types used by the hand-rolled SLS encoder below.
const (
	wireVarint     = 0
	wireFixed64    = 1
	wireBytes      = 2
	wireFixed32    = 5
)

func tagSize(fieldNum int) int {
	return sizeVarint(uint64(fieldNum)<<3 | 0)
}

func writeTag(buf []byte, fieldNum, wireType int) []byte {
	return writeVarint(buf, uint64(fieldNum)<<3|uint64(wireType))
}

// sizeVarint returns the number of bytes a base-128 varint encoding of v
// occupies.
func sizeVarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// writeVarint appends v to buf as a base-128 varint and returns buf.
func writeVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func sizeString(s string) int {
	return sizeVarint(uint64(len(s))) + len(s)
}

func writeString(buf []byte, fieldNum int, s string) []byte {
	buf = writeTag(buf, fieldNum, wireBytes)
	buf = writeVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// clampedTimestampVarintSize is the number of bytes a uint32 log timestamp
// always occupies once clamped to minTimeForFiveByteVarint: exactly 5,
// which lets the size-prediction pass (GetLogSize) compute a log's total
// byte footprint without re-running the encoder, matching AddLogTime's
// clamp in the original's LogGroupSerializer.
const clampedTimestampVarintSize = 5

// minTimeForFiveByteVarint is 2^28: any uint32 at or above this value
// needs exactly 5 base-128 varint bytes, so clamping every timestamp up to
// at least this floor makes the varint length a compile-time constant.
const minTimeForFiveByteVarint = 1 << 28

func clampTimestamp(t uint32) uint32 {
	if t < minTimeForFiveByteVarint {
		return minTimeForFiveByteVarint
	}
	return t
}
