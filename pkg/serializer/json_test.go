package serializer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/event"
)

func TestJSONSerializerMergesGroupTags(t *testing.T) {
	tags := event.NewSizedTags()
	tags.Add("host", "h1")
	contents := event.NewSizedTags()
	contents.Add("msg", "hi")

	g := &event.Group{Tags: tags, Events: []event.Event{
		&event.LogEvent{Meta: event.Meta{Timestamp: 100}, Contents: contents},
	}}

	out, err := JSONSerializer{}.Serialize(g)
	require.NoError(t, err)

	var rec jsonRecord
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &rec))
	assert.Equal(t, "h1", rec.Fields["host"])
	assert.Equal(t, "hi", rec.Fields["msg"])
	assert.Equal(t, "log", rec.Type)
}

func TestSpanJSONSerializerRejectsNonSpan(t *testing.T) {
	g := &event.Group{Events: []event.Event{&event.LogEvent{}}}
	_, err := SpanJSONSerializer{}.Serialize(g)
	assert.Error(t, err)
}
