package serializer

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/loongcollector/agent/pkg/event"
)

// ArmsSpanSerializer encodes an event.Group of SpanEvents into the Arms
// span binary wire format, with common resource labels (host, app id,
// cluster, sdk) attached once per payload rather than per span. The
// serialized output is Snappy-framed by the flusher before transport, not
// by this type. Grounded on ArmsSerializer.h and FlusherXTrace.cpp.
type ArmsSpanSerializer struct {
	Resource ArmsResource
}

// ArmsResource carries the resource-level labels attached once per
// serialized payload.
type ArmsResource struct {
	Host    string
	AppID   string
	Cluster string
	SDK     string
}

const (
	fieldArmsResource = 1
	fieldArmsSpans    = 2

	fieldResourceHost    = 1
	fieldResourceAppID   = 2
	fieldResourceCluster = 3
	fieldResourceSDK     = 4

	fieldSpanTraceID    = 1
	fieldSpanSpanID     = 2
	fieldSpanParentID   = 3
	fieldSpanName       = 4
	fieldSpanKind       = 5
	fieldSpanStartTime  = 6
	fieldSpanDurationNs = 7
	fieldSpanTags       = 8

	fieldSpanTagKey   = 1
	fieldSpanTagValue = 2
)

func (s ArmsSpanSerializer) Serialize(g *event.Group) ([]byte, error) {
	var resBuf []byte
	resBuf = protowire.AppendTag(resBuf, fieldResourceHost, protowire.BytesType)
	resBuf = protowire.AppendString(resBuf, s.Resource.Host)
	resBuf = protowire.AppendTag(resBuf, fieldResourceAppID, protowire.BytesType)
	resBuf = protowire.AppendString(resBuf, s.Resource.AppID)
	resBuf = protowire.AppendTag(resBuf, fieldResourceCluster, protowire.BytesType)
	resBuf = protowire.AppendString(resBuf, s.Resource.Cluster)
	resBuf = protowire.AppendTag(resBuf, fieldResourceSDK, protowire.BytesType)
	resBuf = protowire.AppendString(resBuf, s.Resource.SDK)

	var buf []byte
	buf = protowire.AppendTag(buf, fieldArmsResource, protowire.BytesType)
	buf = protowire.AppendBytes(buf, resBuf)

	for _, ev := range g.Events {
		sp, ok := ev.(*event.SpanEvent)
		if !ok {
			return nil, fmt.Errorf("serializer: arms encoder does not support event type %v", ev.Type())
		}
		spanBuf := encodeArmsSpan(sp)
		buf = protowire.AppendTag(buf, fieldArmsSpans, protowire.BytesType)
		buf = protowire.AppendBytes(buf, spanBuf)
	}
	return buf, nil
}

func encodeArmsSpan(sp *event.SpanEvent) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldSpanTraceID, protowire.BytesType)
	buf = protowire.AppendString(buf, sp.TraceID)
	buf = protowire.AppendTag(buf, fieldSpanSpanID, protowire.BytesType)
	buf = protowire.AppendString(buf, sp.SpanID)
	if sp.ParentID != "" {
		buf = protowire.AppendTag(buf, fieldSpanParentID, protowire.BytesType)
		buf = protowire.AppendString(buf, sp.ParentID)
	}
	buf = protowire.AppendTag(buf, fieldSpanName, protowire.BytesType)
	buf = protowire.AppendString(buf, sp.Name)
	buf = protowire.AppendTag(buf, fieldSpanKind, protowire.BytesType)
	buf = protowire.AppendString(buf, sp.Kind)
	buf = protowire.AppendTag(buf, fieldSpanStartTime, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(sp.Timestamp))
	buf = protowire.AppendTag(buf, fieldSpanDurationNs, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(sp.DurationNs))
	if sp.Tags != nil {
		sp.Tags.Range(func(k, v string) {
			var tagBuf []byte
			tagBuf = protowire.AppendTag(tagBuf, fieldSpanTagKey, protowire.BytesType)
			tagBuf = protowire.AppendString(tagBuf, k)
			tagBuf = protowire.AppendTag(tagBuf, fieldSpanTagValue, protowire.BytesType)
			tagBuf = protowire.AppendString(tagBuf, v)
			buf = protowire.AppendTag(buf, fieldSpanTags, protowire.BytesType)
			buf = protowire.AppendBytes(buf, tagBuf)
		})
	}
	return buf
}
