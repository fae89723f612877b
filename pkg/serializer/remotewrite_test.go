package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/loongcollector/agent/pkg/event"
)

func TestRemoteWriteInjectsMissingName(t *testing.T) {
	g := &event.Group{
		Events: []event.Event{
			&event.MetricEvent{Meta: event.Meta{Timestamp: 1700000000}, Name: "cpu_usage", Value: event.SingleMetricValue(0.5)},
		},
	}
	out, err := RemoteWriteSerializer{}.Serialize(g)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	num, _, n := protowire.ConsumeTag(out)
	require.Equal(t, protowire.Number(fieldWriteRequestTimeseries), num)
	ts, _ := protowire.ConsumeBytes(out[n:])

	foundName := false
	b := ts
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		b = b[n:]
		if num == fieldTimeSeriesLabels {
			lbl, n := protowire.ConsumeBytes(b)
			b = b[n:]
			if containsLabel(lbl, "__name__", "cpu_usage") {
				foundName = true
			}
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		b = b[n:]
	}
	assert.True(t, foundName, "missing __name__ label should be injected from the event name")
}

func containsLabel(buf []byte, key, value string) bool {
	var gotKey, gotValue string
	b := buf
	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		b = b[n:]
		v, n := protowire.ConsumeBytes(b)
		b = b[n:]
		switch num {
		case fieldLabelName:
			gotKey = string(v)
		case fieldLabelValue:
			gotValue = string(v)
		}
	}
	return gotKey == key && gotValue == value
}
