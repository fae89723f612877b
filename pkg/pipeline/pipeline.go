// Package pipeline wires one pipeline's Batcher, Router and Flushers
// together and drives the timeout-triggered and Stop-triggered flush
// paths, matching spec.md §5's concurrency model: one processing loop per
// pipeline plus the shared TimeoutFlushManager goroutine.
package pipeline

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/loongcollector/agent/pkg/batch"
	"github.com/loongcollector/agent/pkg/event"
	"github.com/loongcollector/agent/pkg/flusher"
	"github.com/loongcollector/agent/pkg/router"
)

// Pipeline accepts events, batches them, routes flushed groups to
// flushers, and can be stopped to drain every pending batch.
type Pipeline struct {
	Name     string
	Batcher  *batch.Batcher
	Router   *router.Router
	Flushers []flusher.Flusher
	Logger   *zap.Logger

	mu      sync.Mutex
	stopped bool
}

// New constructs a Pipeline. The Batcher must already be wired to a
// TimeoutFlushManager whose FlushFunc calls p.FlushKey for this pipeline's
// name, so time-triggered flushes reach the same routing path as
// threshold-triggered ones.
func New(name string, b *batch.Batcher, rt *router.Router, flushers []flusher.Flusher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Name: name, Batcher: b, Router: rt, Flushers: flushers, Logger: logger}
}

// Add feeds one event into the pipeline's batcher, routing any group the
// batcher's cascade produces as a side effect.
func (p *Pipeline) Add(key uint64, tags *event.SizedTags, ev event.Event, arena *event.Arena) error {
	res := p.Batcher.Add(key, tags, ev, arena)
	return p.routeAll(res.Groups)
}

// FlushKey force-flushes one batch item by key, e.g. in response to a
// TimeoutFlushManager deadline for this pipeline.
func (p *Pipeline) FlushKey(key uint64) error {
	res := p.Batcher.FlushQueue(key)
	return p.routeAll(res.Groups)
}

// Stop flushes every pending batch item and group item, routes the
// results, and marks the pipeline stopped. Errors from individual
// flushers are joined rather than short-circuiting, so one broken
// destination doesn't prevent draining the rest.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	p.stopped = true

	res := p.Batcher.FlushAll()
	return p.routeAll(res.Groups)
}

func (p *Pipeline) routeAll(groups []*event.Group) error {
	var errs error
	for _, g := range groups {
		matches := p.Router.Route(g)
		for _, m := range matches {
			if m.FlusherIndex < 0 || m.FlusherIndex >= len(p.Flushers) {
				errs = multierror.Append(errs, errUnknownFlusherIndex(m.FlusherIndex))
				continue
			}
			if err := p.Flushers[m.FlusherIndex].Send(m.Group); err != nil {
				p.Logger.Warn("flusher send failed", zap.String("pipeline", p.Name), zap.Error(err))
				errs = multierror.Append(errs, err)
			}
		}
	}
	return errs
}

type errUnknownFlusherIndex int

func (e errUnknownFlusherIndex) Error() string {
	return "pipeline: router matched an unknown flusher index"
}
