package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loongcollector/agent/pkg/event"
)

func TestRouteFansOutToMultipleFlushers(t *testing.T) {
	tags := event.NewSizedTags()
	tags.Add("env", "prod")
	arena := event.NewArena([]byte("x"))
	g := event.NewGroup(tags, arena)
	g.Add(&event.LogEvent{})

	rt := &Router{Routes: []Route{
		{Conditions: []Condition{EventTypeCondition{Type: event.TypeLog}}, FlusherIndex: 0},
		{Conditions: []Condition{TagValueCondition{Key: "env", Value: "prod"}}, FlusherIndex: 1},
	}}

	matches := rt.Route(g)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].FlusherIndex)
	assert.Equal(t, 1, matches[1].FlusherIndex)
	assert.Same(t, g, matches[1].Group, "last match takes ownership of the original group")
	assert.NotSame(t, g, matches[0].Group, "earlier matches get a shallow copy")
}

func TestRouteNoMatchReleasesGroup(t *testing.T) {
	arena := event.NewArena([]byte("x"))
	g := event.NewGroup(nil, arena)
	arena.Release() // drop the creator's reference; only g's remains
	rt := &Router{Routes: []Route{{Conditions: []Condition{EventTypeCondition{Type: event.TypeMetric}}, FlusherIndex: 0}}}
	matches := rt.Route(g)
	assert.Empty(t, matches)
	assert.Nil(t, arena.Bytes(), "releasing the unmatched group drops the last arena reference")
}
