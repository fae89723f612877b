package serializer

import (
	"fmt"

	"github.com/loongcollector/agent/pkg/event"
)

// SLS protobuf field numbers, matching the public sls_logs.proto schema:
// Log{Time=1,Contents=2,Time_ns=3}, Content{Key=1,Value=2},
// LogTag{Key=1,Value=2},
// LogGroup{Logs=1,Category=2,Topic=3,Source=4,MachineUUID=5,LogTags=6}.
const (
	fieldLogTime    = 1
	fieldLogContent = 2
	fieldLogTimeNs  = 3

	fieldKVKey   = 1
	fieldKVValue = 2

	fieldGroupLogs         = 1
	fieldGroupCategory     = 2
	fieldGroupTopic        = 3
	fieldGroupSource       = 4
	fieldGroupMachineUUID  = 5
	fieldGroupLogTags      = 6
)

// sizeKV predicts the encoded size of a Content/LogTag-shaped {Key,Value}
// submessage, without emitting it, so the two-pass serializer can
// preallocate the exact output buffer.
func sizeKV(key, value string) int {
	return tagSize(fieldKVKey) + sizeString(key) + tagSize(fieldKVValue) + sizeString(value)
}

func writeKV(buf []byte, fieldKey, fieldValue int, key, value string) []byte {
	buf = writeString(buf, fieldKey, key)
	buf = writeString(buf, fieldValue, value)
	return buf
}

// sizeLogContentSubmessage predicts the size of one length-delimited
// Content field nested inside a Log, including its own tag+length prefix.
func sizeLogContentSubmessage(key, value string) int {
	inner := sizeKV(key, value)
	return tagSize(fieldLogContent) + sizeVarint(uint64(inner)) + inner
}

func writeLogContentSubmessage(buf []byte, key, value string) []byte {
	inner := sizeKV(key, value)
	buf = writeTag(buf, fieldLogContent, wireBytes)
	buf = writeVarint(buf, uint64(inner))
	buf = writeKV(buf, fieldKVKey, fieldKVValue, key, value)
	return buf
}

// sizeLogTagSubmessage predicts the size of one LogTag field nested inside
// a LogGroup.
func sizeLogTagSubmessage(key, value string) int {
	inner := sizeKV(key, value)
	return tagSize(fieldGroupLogTags) + sizeVarint(uint64(inner)) + inner
}

func writeLogTagSubmessage(buf []byte, key, value string) []byte {
	inner := sizeKV(key, value)
	buf = writeTag(buf, fieldGroupLogTags, wireBytes)
	buf = writeVarint(buf, uint64(inner))
	buf = writeKV(buf, fieldKVKey, fieldKVValue, key, value)
	return buf
}

// logFields is the (key, value) content pairs one Log message carries,
// produced from a LogEvent's or MetricEvent's contents by the caller.
type logFields struct {
	timestamp   uint32
	timestampNs uint32
	hasNs       bool
	contents    [][2]string
}

func sizeLog(f logFields) int {
	size := tagSize(fieldLogTime) + clampedTimestampVarintSize
	for _, kv := range f.contents {
		size += sizeLogContentSubmessage(kv[0], kv[1])
	}
	if f.hasNs {
		size += tagSize(fieldLogTimeNs) + sizeVarint(uint64(f.timestampNs))
	}
	return size
}

func writeLog(buf []byte, f logFields) []byte {
	buf = writeTag(buf, fieldLogTime, wireVarint)
	buf = writeVarint(buf, uint64(clampTimestamp(f.timestamp)))
	for _, kv := range f.contents {
		buf = writeLogContentSubmessage(buf, kv[0], kv[1])
	}
	if f.hasNs {
		buf = writeTag(buf, fieldLogTimeNs, wireVarint)
		buf = writeVarint(buf, uint64(f.timestampNs))
	}
	return buf
}

// sizeGroupLogSubmessage predicts the size of one Log field nested inside
// a LogGroup, including its own tag+length prefix.
func sizeGroupLogSubmessage(f logFields) int {
	inner := sizeLog(f)
	return tagSize(fieldGroupLogs) + sizeVarint(uint64(inner)) + inner
}

func writeGroupLogSubmessage(buf []byte, f logFields) []byte {
	inner := sizeLog(f)
	buf = writeTag(buf, fieldGroupLogs, wireBytes)
	buf = writeVarint(buf, uint64(inner))
	buf = writeLog(buf, f)
	return buf
}

func sizeOptionalString(fieldNum int, s string) int {
	if s == "" {
		return 0
	}
	return tagSize(fieldNum) + sizeString(s)
}

func writeOptionalString(buf []byte, fieldNum int, s string) []byte {
	if s == "" {
		return buf
	}
	return writeString(buf, fieldNum, s)
}

// SLSGroupOptions carries the group-level fields an SLS LogGroup wraps its
// Logs with: Topic/Source/MachineUUID are reserved tags promoted out of
// the generic tag list, everything else in Tags stays a LogTag.
type SLSGroupOptions struct {
	Category    string
	Topic       string
	Source      string
	MachineUUID string
}

// reservedGroupTags are promoted from event.Group.Tags into the LogGroup's
// dedicated Topic/Source/MachineUUID fields rather than emitted as generic
// LogTags, matching SLSSerializer.cpp's reserved-tag handling.
var reservedGroupTags = map[string]func(*SLSGroupOptions, string){
	"__topic__":        func(o *SLSGroupOptions, v string) { o.Topic = v },
	"__source__":       func(o *SLSGroupOptions, v string) { o.Source = v },
	"__machine_uuid__": func(o *SLSGroupOptions, v string) { o.MachineUUID = v },
}

// SLSGroupSerializer is the hand-rolled, two-pass (size-then-emit) SLS
// LogGroup encoder. It deliberately does not use a generic protobuf
// library on this hot path (see DESIGN.md); the wire format still matches
// the public sls_logs.proto schema exactly.
type SLSGroupSerializer struct{}

// Serialize encodes g as one SLS LogGroup protobuf message. Only
// LogEvent and MetricEvent payloads are supported; an unsupported event
// type is an error, matching the original's type-specific serializers.
func (SLSGroupSerializer) Serialize(g *event.Group) ([]byte, error) {
	opts := SLSGroupOptions{}
	var tagKVs [][2]string
	if g.Tags != nil {
		g.Tags.Range(func(k, v string) {
			if set, ok := reservedGroupTags[k]; ok {
				set(&opts, v)
				return
			}
			tagKVs = append(tagKVs, [2]string{k, v})
		})
	}

	fields := make([]logFields, 0, len(g.Events))
	for _, ev := range g.Events {
		f, ok, err := toLogFields(ev)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		fields = append(fields, f)
	}

	size := 0
	for _, f := range fields {
		size += sizeGroupLogSubmessage(f)
	}
	size += sizeOptionalString(fieldGroupCategory, opts.Category)
	size += sizeOptionalString(fieldGroupTopic, opts.Topic)
	size += sizeOptionalString(fieldGroupSource, opts.Source)
	size += sizeOptionalString(fieldGroupMachineUUID, opts.MachineUUID)
	for _, kv := range tagKVs {
		size += sizeLogTagSubmessage(kv[0], kv[1])
	}

	buf := make([]byte, 0, size)
	for _, f := range fields {
		buf = writeGroupLogSubmessage(buf, f)
	}
	buf = writeOptionalString(buf, fieldGroupCategory, opts.Category)
	buf = writeOptionalString(buf, fieldGroupTopic, opts.Topic)
	buf = writeOptionalString(buf, fieldGroupSource, opts.Source)
	buf = writeOptionalString(buf, fieldGroupMachineUUID, opts.MachineUUID)
	for _, kv := range tagKVs {
		buf = writeLogTagSubmessage(buf, kv[0], kv[1])
	}
	return buf, nil
}

// metricLabelsKVSeparator and metricLabelsSeparator match
// LogGroupSerializer.cpp's METRIC_LABELS_KEY_VALUE_SEPARATOR ("#$#") and
// METRIC_LABELS_SEPARATOR ("|").
const (
	metricLabelsKVSeparator = "#$#"
	metricLabelsSeparator   = "|"
)

// toLogFields converts ev into the (key, value) content pairs one SLS Log
// message carries. The second return reports whether ev should be emitted
// at all: a MetricEvent whose Value is monostate (empty) or multi-valued is
// skipped, matching SLSSerializer.cpp's `e.Is<std::monostate>() { continue; }`
// — multi-value metrics are accepted at the event-model level but rejected
// here, since this encoder has no wire representation for them yet.
func toLogFields(ev event.Event) (logFields, bool, error) {
	switch e := ev.(type) {
	case *event.LogEvent:
		f := logFields{timestamp: uint32(e.Timestamp), timestampNs: uint32(e.TimestampNs), hasNs: e.TimestampNs != 0}
		if e.Contents != nil {
			e.Contents.Range(func(k, v string) { f.contents = append(f.contents, [2]string{k, v}) })
		}
		if e.Tags != nil {
			e.Tags.Range(func(k, v string) { f.contents = append(f.contents, [2]string{k, v}) })
		}
		return f, true, nil
	case *event.MetricEvent:
		single, ok := e.Value.Single()
		if !ok {
			return logFields{}, false, nil
		}
		f := logFields{timestamp: uint32(e.Timestamp), timestampNs: uint32(e.TimestampNs), hasNs: e.TimestampNs != 0}
		var labels []byte
		if e.Labels != nil {
			first := true
			e.Labels.Range(func(k, v string) {
				if !first {
					labels = append(labels, metricLabelsSeparator...)
				}
				first = false
				labels = append(labels, k...)
				labels = append(labels, metricLabelsKVSeparator...)
				labels = append(labels, v...)
			})
		}
		f.contents = append(f.contents,
			[2]string{"__labels__", string(labels)},
			[2]string{"__time_nano__", fmt.Sprintf("%d", e.Timestamp*1e9+e.TimestampNs)},
			[2]string{"__value__", formatMetricValue(single)},
			[2]string{"__name__", e.Name},
		)
		return f, true, nil
	default:
		return logFields{}, false, fmt.Errorf("serializer: sls encoder does not support event type %v", ev.Type())
	}
}

// formatMetricValue renders a metric value with six-decimal precision
// ("%f"), matching the original's AddLogContentMetricValue formatting.
// This loses precision versus a shortest-round-trip formatter; kept for
// wire compatibility with existing SLS metric-store consumers (see
// DESIGN.md Open Question log).
func formatMetricValue(v float64) string {
	return fmt.Sprintf("%f", v)
}
