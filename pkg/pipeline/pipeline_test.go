package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/batch"
	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/flusher"
	"github.com/loongcollector/agent/pkg/router"
)

type recordingFlusher struct {
	sent []*event.Group
}

func (f *recordingFlusher) QueueKey() string { return "recording" }
func (f *recordingFlusher) Send(g *event.Group) error {
	f.sent = append(f.sent, g)
	return nil
}

func TestPipelineAddRoutesFlushedGroup(t *testing.T) {
	now := int64(1000)
	b := batch.New("p1", "f1", 3600, false, 0, 1, 0, 0, batch.NewEventStatus, func() int64 { return now }, nil)
	rt := &router.Router{Routes: []router.Route{{Conditions: []router.Condition{router.EventTypeCondition{Type: event.TypeLog}}, FlusherIndex: 0}}}
	rf := &recordingFlusher{}
	p := New("p1", b, rt, []flusher.Flusher{rf}, nil)

	err := p.Add(1, nil, &event.LogEvent{}, nil)
	require.NoError(t, err)
	assert.Len(t, rf.sent, 1)
}

func TestPipelineStopDrainsAll(t *testing.T) {
	now := int64(1000)
	b := batch.New("p1", "f1", 3600, false, 0, 0, 0, 0, batch.NewEventStatus, func() int64 { return now }, nil)
	rt := &router.Router{Routes: []router.Route{{Conditions: []router.Condition{router.EventTypeCondition{Type: event.TypeLog}}, FlusherIndex: 0}}}
	rf := &recordingFlusher{}
	p := New("p1", b, rt, []flusher.Flusher{rf}, nil)

	require.NoError(t, p.Add(1, nil, &event.LogEvent{}, nil))
	require.NoError(t, p.Stop())
	assert.Len(t, rf.sent, 1)
}
