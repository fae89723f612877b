package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/loongcollector/agent/pkg/event"
)

func TestSLSGroupSerializerRoundTripsWireFormat(t *testing.T) {
	tags := event.NewSizedTags()
	tags.Add("__topic__", "app.log")
	tags.Add("env", "prod")

	contents := event.NewSizedTags()
	contents.Add("msg", "hello world")

	g := &event.Group{
		Tags: tags,
		Events: []event.Event{
			&event.LogEvent{Meta: event.Meta{Timestamp: 1700000000}, Contents: contents},
		},
	}

	out, err := SLSGroupSerializer{}.Serialize(g)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// Walk the top-level protobuf fields and confirm the shape: one Logs
	// submessage, no Category, a Topic string, one LogTag submessage.
	var sawLog, sawTopic, sawTag bool
	b := out
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		require.Greater(t, n, 0)
		b = b[n:]
		switch num {
		case fieldGroupLogs:
			sawLog = true
			v, n := protowire.ConsumeBytes(b)
			require.GreaterOrEqual(t, n, 0)
			_ = v
			b = b[n:]
		case fieldGroupTopic:
			sawTopic = true
			v, n := protowire.ConsumeBytes(b)
			assert.Equal(t, "app.log", string(v))
			b = b[n:]
		case fieldGroupLogTags:
			sawTag = true
			v, n := protowire.ConsumeBytes(b)
			require.GreaterOrEqual(t, n, 0)
			_ = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			b = b[n:]
		}
	}
	assert.True(t, sawLog)
	assert.True(t, sawTopic)
	assert.True(t, sawTag)
}

func TestSLSTimestampClamp(t *testing.T) {
	assert.Equal(t, uint32(minTimeForFiveByteVarint), clampTimestamp(0))
	assert.Equal(t, uint32(minTimeForFiveByteVarint+1), clampTimestamp(minTimeForFiveByteVarint+1))
	assert.Equal(t, clampedTimestampVarintSize, sizeVarint(uint64(clampTimestamp(0))))
	assert.Equal(t, clampedTimestampVarintSize, sizeVarint(uint64(clampTimestamp(1700000000))))
}

func TestSLSUnsupportedEventType(t *testing.T) {
	g := &event.Group{Events: []event.Event{&event.SpanEvent{}}}
	_, err := SLSGroupSerializer{}.Serialize(g)
	assert.Error(t, err)
}

// decodeSLSLogContents walks one LogGroup's single Log submessage and
// returns its Content (key, value) pairs in wire order, for asserting the
// exact field order and byte content the original's SLSSerializer emits.
func decodeSLSLogContents(t *testing.T, buf []byte) [][2]string {
	t.Helper()
	var contents [][2]string
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		require.Greater(t, n, 0)
		buf = buf[n:]
		if num != fieldGroupLogs {
			n := protowire.ConsumeFieldValue(num, typ, buf)
			buf = buf[n:]
			continue
		}
		logBytes, n := protowire.ConsumeBytes(buf)
		buf = buf[n:]
		b := logBytes
		for len(b) > 0 {
			cnum, ctyp, cn := protowire.ConsumeTag(b)
			require.Greater(t, cn, 0)
			b = b[cn:]
			if cnum != fieldLogContent {
				n := protowire.ConsumeFieldValue(cnum, ctyp, b)
				b = b[n:]
				continue
			}
			kvBytes, n := protowire.ConsumeBytes(b)
			b = b[n:]
			var key, value string
			kb := kvBytes
			for len(kb) > 0 {
				knum, ktyp, kn := protowire.ConsumeTag(kb)
				kb = kb[kn:]
				v, n := protowire.ConsumeBytes(kb)
				kb = kb[n:]
				switch knum {
				case fieldKVKey:
					key = string(v)
				case fieldKVValue:
					value = string(v)
				}
				_ = ktyp
			}
			contents = append(contents, [2]string{key, value})
		}
	}
	return contents
}

func TestSLSMetricSerializerFieldOrderAndLabelSeparator(t *testing.T) {
	labels := event.NewSizedTags()
	labels.Add("env", "prod")
	labels.Add("host", "h1")

	g := &event.Group{
		Events: []event.Event{
			&event.MetricEvent{
				Meta:   event.Meta{Timestamp: 1700000000},
				Name:   "cpu_usage",
				Value:  event.SingleMetricValue(0.5),
				Labels: labels,
			},
		},
	}

	out, err := SLSGroupSerializer{}.Serialize(g)
	require.NoError(t, err)

	contents := decodeSLSLogContents(t, out)
	require.Len(t, contents, 4)
	assert.Equal(t, "__labels__", contents[0][0])
	assert.Equal(t, "env#$#prod|host#$#h1", contents[0][1])
	assert.Equal(t, "__time_nano__", contents[1][0])
	assert.Equal(t, "__value__", contents[2][0])
	assert.Equal(t, "0.500000", contents[2][1])
	assert.Equal(t, "__name__", contents[3][0])
	assert.Equal(t, "cpu_usage", contents[3][1])
}

func TestSLSMetricSerializerEmitsEmptyLabelsWhenAbsent(t *testing.T) {
	g := &event.Group{
		Events: []event.Event{
			&event.MetricEvent{Meta: event.Meta{Timestamp: 1700000000}, Name: "cpu_usage", Value: event.SingleMetricValue(0.5)},
		},
	}
	out, err := SLSGroupSerializer{}.Serialize(g)
	require.NoError(t, err)

	contents := decodeSLSLogContents(t, out)
	require.Len(t, contents, 4)
	assert.Equal(t, "__labels__", contents[0][0])
	assert.Equal(t, "", contents[0][1])
}

func TestSLSMetricSerializerSkipsMonostateAndMultiValue(t *testing.T) {
	g := &event.Group{
		Events: []event.Event{
			&event.MetricEvent{Meta: event.Meta{Timestamp: 1700000000}, Name: "empty"},
			&event.MetricEvent{Meta: event.Meta{Timestamp: 1700000000}, Name: "multi", Value: event.MultiMetricValue(map[string]float64{"a": 1})},
		},
	}
	out, err := SLSGroupSerializer{}.Serialize(g)
	require.NoError(t, err)
	assert.Empty(t, decodeSLSLogContents(t, out))
}
