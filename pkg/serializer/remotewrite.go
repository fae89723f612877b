package serializer

import (
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/loongcollector/agent/pkg/event"
)

// RemoteWriteSerializer encodes an event.Group of MetricEvents as a
// Prometheus remote_write WriteRequest, built directly with protowire
// rather than a generated message type, grounded on
// RemoteWriteSerializer.cpp.
type RemoteWriteSerializer struct{}

const (
	fieldWriteRequestTimeseries = 1

	fieldTimeSeriesLabels  = 1
	fieldTimeSeriesSamples = 2

	fieldLabelName  = 1
	fieldLabelValue = 2

	fieldSampleValue     = 1
	fieldSampleTimestamp = 2
)

// Serialize encodes g as a WriteRequest message body. Metric events missing
// a "__name__" label have it injected from the event's Name field so every
// series is addressable by metric name, per spec: unlike the C++ original
// (which injects the label and then skips the sample via `continue`,
// apparently dropping it — see DESIGN.md Open Question), this
// implementation injects and still emits the sample.
func (RemoteWriteSerializer) Serialize(g *event.Group) ([]byte, error) {
	var buf []byte
	for _, ev := range g.Events {
		m, ok := ev.(*event.MetricEvent)
		if !ok {
			continue
		}
		if _, ok := m.Value.Single(); !ok {
			continue
		}
		ts := buildTimeSeries(m, g.Tags)
		buf = protowire.AppendTag(buf, fieldWriteRequestTimeseries, protowire.BytesType)
		buf = protowire.AppendBytes(buf, ts)
	}
	return buf, nil
}

func buildTimeSeries(m *event.MetricEvent, groupTags *event.SizedTags) []byte {
	type kv struct{ k, v string }
	var labels []kv
	haveName := false

	if groupTags != nil {
		groupTags.Range(func(k, v string) {
			if k == "__name__" {
				haveName = true
			}
			labels = append(labels, kv{k, v})
		})
	}
	if m.Labels != nil {
		m.Labels.Range(func(k, v string) {
			if k == "__name__" {
				haveName = true
			}
			labels = append(labels, kv{k, v})
		})
	}
	if !haveName {
		labels = append(labels, kv{"__name__", m.Name})
	}

	sort.Slice(labels, func(i, j int) bool { return labels[i].k < labels[j].k })

	var ts []byte
	for _, l := range labels {
		var lbl []byte
		lbl = protowire.AppendTag(lbl, fieldLabelName, protowire.BytesType)
		lbl = protowire.AppendString(lbl, l.k)
		lbl = protowire.AppendTag(lbl, fieldLabelValue, protowire.BytesType)
		lbl = protowire.AppendString(lbl, l.v)
		ts = protowire.AppendTag(ts, fieldTimeSeriesLabels, protowire.BytesType)
		ts = protowire.AppendBytes(ts, lbl)
	}

	single, _ := m.Value.Single()
	var sample []byte
	sample = protowire.AppendTag(sample, fieldSampleValue, protowire.Fixed64Type)
	sample = protowire.AppendFixed64(sample, math.Float64bits(single))
	sample = protowire.AppendTag(sample, fieldSampleTimestamp, protowire.VarintType)
	sample = protowire.AppendVarint(sample, uint64(m.Timestamp*1000+m.TimestampNs/1e6))

	ts = protowire.AppendTag(ts, fieldTimeSeriesSamples, protowire.BytesType)
	ts = protowire.AppendBytes(ts, sample)
	return ts
}
