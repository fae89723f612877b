package serializer

import "google.golang.org/protobuf/encoding/protowire"

// SLSGroupListSerializer wraps one or more already-compressed SLS LogGroup
// byte strings into an SlsLogPackageList envelope, ready for the SLS HTTP
// PutLogs endpoint. Unlike SLSGroupSerializer this outer envelope has no
// hot-path size-prediction requirement, so it is built with the generic
// protowire encoder rather than a hand-rolled one.
//
// Grounded on SLSEventGroupListSerializer::Serialize.
type SLSGroupListSerializer struct{}

const (
	fieldPackageLogGroupBytes = 1
	fieldPackageLogGroupCount = 2
)

// CompressedLogGroup is one already-compressed LogGroup payload. It holds
// only the compressed bytes: neither the codec nor the uncompressed size is
// recorded, so Serialize emits no per-entry compress type or raw size.
type CompressedLogGroup struct {
	Data []byte
}

// Serialize wraps groups into one SlsLogPackageList message body.
func (SLSGroupListSerializer) Serialize(groups []CompressedLogGroup) []byte {
	var buf []byte
	for _, g := range groups {
		buf = protowire.AppendTag(buf, fieldPackageLogGroupBytes, protowire.BytesType)
		buf = protowire.AppendBytes(buf, g.Data)
	}
	buf = protowire.AppendTag(buf, fieldPackageLogGroupCount, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(len(groups)))
	return buf
}
