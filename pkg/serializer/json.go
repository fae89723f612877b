package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/loongcollector/agent/pkg/event"
)

// JSONSerializer encodes an event.Group as newline-delimited JSON objects,
// one per event, each carrying the group's tags merged under the event's
// own fields. Grounded on JsonSerializer.cpp.
type JSONSerializer struct{}

type jsonRecord struct {
	Time   int64             `json:"time"`
	TimeNs int64             `json:"time_ns,omitempty"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"contents"`
}

// Serialize encodes g as newline-delimited JSON. Span events are rejected;
// use SpanJSONSerializer for those.
func (JSONSerializer) Serialize(g *event.Group) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range g.Events {
		rec, ok, err := toJSONRecord(ev, g.Tags)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("serializer: json encode: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// toJSONRecord converts ev into a jsonRecord. The second return reports
// whether ev should be emitted at all: a MetricEvent whose Value is
// monostate (empty) or multi-valued is skipped, matching
// JsonSerializer.cpp's monostate-skip handling.
func toJSONRecord(ev event.Event, groupTags *event.SizedTags) (jsonRecord, bool, error) {
	fields := make(map[string]string)
	if groupTags != nil {
		groupTags.Range(func(k, v string) { fields[k] = v })
	}

	switch e := ev.(type) {
	case *event.LogEvent:
		if e.Contents != nil {
			e.Contents.Range(func(k, v string) { fields[k] = v })
		}
		if e.Tags != nil {
			e.Tags.Range(func(k, v string) { fields[k] = v })
		}
		return jsonRecord{Time: e.Timestamp, TimeNs: e.TimestampNs, Type: "log", Fields: fields}, true, nil
	case *event.MetricEvent:
		single, ok := e.Value.Single()
		if !ok {
			return jsonRecord{}, false, nil
		}
		fields["__name__"] = e.Name
		fields["__value__"] = formatMetricValue(single)
		if e.Labels != nil {
			e.Labels.Range(func(k, v string) { fields[k] = v })
		}
		return jsonRecord{Time: e.Timestamp, TimeNs: e.TimestampNs, Type: "metric", Fields: fields}, true, nil
	case *event.RawEvent:
		fields["__raw__"] = string(e.Data)
		return jsonRecord{Time: e.Timestamp, TimeNs: e.TimestampNs, Type: "raw", Fields: fields}, true, nil
	default:
		return jsonRecord{}, false, fmt.Errorf("serializer: json encoder does not support event type %v", ev.Type())
	}
}

// SpanJSONSerializer encodes an event.Group of SpanEvents as
// newline-delimited JSON span records, per spec.md's Span-JSON wire
// format.
type SpanJSONSerializer struct{}

type spanJSONRecord struct {
	TraceID    string            `json:"traceId"`
	SpanID     string            `json:"spanId"`
	ParentID   string            `json:"parentId,omitempty"`
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	StartTime  int64             `json:"startTime"`
	DurationNs int64             `json:"durationNs"`
	Tags       map[string]string `json:"tags,omitempty"`
}

func (SpanJSONSerializer) Serialize(g *event.Group) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range g.Events {
		sp, ok := ev.(*event.SpanEvent)
		if !ok {
			return nil, fmt.Errorf("serializer: span json encoder does not support event type %v", ev.Type())
		}
		rec := spanJSONRecord{
			TraceID: sp.TraceID, SpanID: sp.SpanID, ParentID: sp.ParentID,
			Name: sp.Name, Kind: sp.Kind, StartTime: sp.Timestamp, DurationNs: sp.DurationNs,
		}
		if sp.Tags != nil {
			rec.Tags = make(map[string]string)
			sp.Tags.Range(func(k, v string) { rec.Tags[k] = v })
		}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("serializer: span json encode: %w", err)
		}
	}
	return buf.Bytes(), nil
}
