// Package router implements flusher routing: evaluating a set of
// Conditions against an event.Group and fanning it out to every matching
// flusher, sharing the group's arena (move-not-copy semantics on the final
// match) rather than deep-copying events per destination.
package router

import "github.com/loongcollector/agent/pkg/event"

// Condition decides whether an event.Group should be routed to a
// particular flusher.
type Condition interface {
	Match(g *event.Group) bool
}

// EventTypeCondition matches groups whose first event is of a given type.
// Only LOG, METRIC and SPAN are matchable; RAW groups never match, since a
// raw event carries no type-specific payload to route on.
type EventTypeCondition struct {
	Type event.Type
}

func (c EventTypeCondition) Match(g *event.Group) bool {
	if len(g.Events) == 0 {
		return false
	}
	switch c.Type {
	case event.TypeLog, event.TypeMetric, event.TypeSpan:
	default:
		return false
	}
	return g.Events[0].Type() == c.Type
}

// TagValueCondition matches groups whose group-level tags carry key=value.
type TagValueCondition struct {
	Key   string
	Value string
}

func (c TagValueCondition) Match(g *event.Group) bool {
	if g.Tags == nil {
		return false
	}
	v, ok := g.Tags.Get(c.Key)
	return ok && v == c.Value
}

// Route pairs a set of Conditions (all must match, i.e. logical AND) with
// the index of the flusher to send matching groups to.
type Route struct {
	Conditions   []Condition
	FlusherIndex int
}

func (r Route) matches(g *event.Group) bool {
	for _, c := range r.Conditions {
		if !c.Match(g) {
			return false
		}
	}
	return true
}

// Match is one group routed to one flusher.
type Match struct {
	FlusherIndex int
	Group        *event.Group
}

// Router evaluates every Route against an incoming group and returns one
// Match per route that matched.
type Router struct {
	Routes []Route
}

// Route evaluates g against every configured route. Every match but the
// last gets a ShallowCopy (sharing the arena, retaining an extra
// reference); the last match takes ownership of g itself, so the caller
// must not use g again after calling Route.
func (rt *Router) Route(g *event.Group) []Match {
	var matchedIdx []int
	for i, r := range rt.Routes {
		if r.matches(g) {
			matchedIdx = append(matchedIdx, i)
		}
	}
	if len(matchedIdx) == 0 {
		g.Release()
		return nil
	}

	out := make([]Match, 0, len(matchedIdx))
	for i, routeIdx := range matchedIdx {
		if i == len(matchedIdx)-1 {
			out = append(out, Match{FlusherIndex: rt.Routes[routeIdx].FlusherIndex, Group: g})
		} else {
			out = append(out, Match{FlusherIndex: rt.Routes[routeIdx].FlusherIndex, Group: g.ShallowCopy()})
		}
	}
	return out
}
