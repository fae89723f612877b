package flusher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/compression"
	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/sender"
	"github.com/loongcollector/agent/pkg/serializer"
)

func TestArmsSpanFlusherSendEnqueuesCompressedPayload(t *testing.T) {
	q := sender.NewQueue(4)
	comp, err := compression.New(compression.Snappy)
	require.NoError(t, err)
	f := &ArmsSpanFlusher{
		Base: Base{
			Serializer: serializer.ArmsSpanSerializer{Resource: serializer.ArmsResource{Host: "h1", AppID: "app1"}},
			Compressor: comp,
			Queue:      q,
		},
		Endpoint: "https://arms.example.com/trace",
		AppID:    "app1",
	}
	assert.Equal(t, "arms/app1", f.QueueKey())

	g := &event.Group{Events: []event.Event{&event.SpanEvent{TraceID: "t1", SpanID: "s1", Name: "op"}}}
	require.NoError(t, f.Send(g))

	items := q.GetAllAvailableItems()
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].Payload)
	assert.Greater(t, items[0].RawByteSize, int64(0))
}
