// Package httpsink implements the concurrent HTTP sink that drains a
// sender.Queue and performs the actual network transport.
//
// The original pipeline drives a single curl-multi event loop on one
// dedicated thread, because curl's easy handles are not safe to share
// across threads. net/http.Client carries no such restriction, so this
// port keeps the loop's control-flow shape (wait_and_pop, dispatch, drain
// completions, try to pop more, bounded sleep) on one dispatcher
// goroutine, but fans the actual request/response I/O out to a bounded
// worker pool instead of forcing it to stay serialized — see spec.md's
// design note and SPEC_FULL.md §4.8.
package httpsink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/loongcollector/agent/pkg/backoff"
	"github.com/loongcollector/agent/pkg/sender"
)

// Destination identifies one HTTP endpoint the sink can dispatch requests
// to, and the headers/backoff state that go with it.
type Destination struct {
	URL     string
	Headers map[string]string
	backoff *backoff.Policy
}

// NewDestination returns a Destination with a fresh default backoff policy.
func NewDestination(url string, headers map[string]string) *Destination {
	return &Destination{URL: url, Headers: headers, backoff: backoff.New(backoff.DefaultConfig())}
}

// OnSendDoneFunc is invoked exactly once per sender.Item, on final success
// or final failure (once MaxTryCount attempts in total have failed).
type OnSendDoneFunc func(it *sender.Item, err error)

// Sink is the concurrent HTTP transport: one dispatcher goroutine per Sink
// pops available items from its Queue and hands them to a bounded worker
// pool, collecting completions on a single channel before popping more.
type Sink struct {
	queue       *sender.Queue
	client      *http.Client
	sem         *semaphore.Weighted
	maxTryCount int
	onDone      OnSendDoneFunc
	logger      *zap.Logger

	limiters []sender.Limiter

	stop chan struct{}
	done chan struct{}
}

// Config configures a Sink.
type Config struct {
	Queue          *sender.Queue
	Client         *http.Client
	MaxConcurrency int64
	MaxTryCount    int
	OnSendDone     OnSendDoneFunc
	Limiters       []sender.Limiter
	Logger         *zap.Logger
}

func New(cfg Config) *Sink {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxTry := cfg.MaxTryCount
	if maxTry <= 0 {
		maxTry = 3
	}
	return &Sink{
		queue:       cfg.Queue,
		client:      client,
		sem:         semaphore.NewWeighted(cfg.MaxConcurrency),
		maxTryCount: maxTry,
		onDone:      cfg.OnSendDone,
		logger:      logger,
		limiters:    cfg.Limiters,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

type sinkResult struct {
	item *Destination
	it   *sender.Item
	err  error
}

// Run drives the dispatch loop until Stop is called: pop everything
// available, dispatch each to the worker pool, drain completions as they
// arrive (requeuing retries, calling OnSendDone on final outcomes), and
// sleep briefly before popping again when nothing was available.
func (s *Sink) Run(ctx context.Context, resolve func(*sender.Item) *Destination) {
	defer close(s.done)

	results := make(chan sinkResult, 64)
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		items := s.queue.GetAllAvailableItems(s.limiters...)
		for _, it := range items {
			dest := resolve(it)
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return
			}
			wg.Add(1)
			go func(it *sender.Item, dest *Destination) {
				defer wg.Done()
				defer s.sem.Release(1)
				err := s.doSend(ctx, dest, it)
				select {
				case results <- sinkResult{item: dest, it: it, err: err}:
				case <-ctx.Done():
				}
			}(it, dest)
		}

		select {
		case r := <-results:
			s.handleResult(r)
			s.drainPending(results)
		case <-ticker.C:
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sink) drainPending(results chan sinkResult) {
	for {
		select {
		case r := <-results:
			s.handleResult(r)
		default:
			return
		}
	}
}

func (s *Sink) handleResult(r sinkResult) {
	for _, l := range s.limiters {
		l.Release(r.it)
	}
	if r.err == nil {
		if r.item != nil {
			r.item.backoff.IncSuccess()
		}
		s.queue.Remove(r.it)
		if s.onDone != nil {
			s.onDone(r.it, nil)
		}
		return
	}

	if r.item != nil {
		r.item.backoff.IncError()
	}
	r.it.TryCount++
	if r.it.TryCount >= s.maxTryCount {
		s.queue.Remove(r.it)
		if s.onDone != nil {
			s.onDone(r.it, r.err)
		}
		return
	}
	r.it.Status = sender.Idle
	s.logger.Warn("transport failed, will retry",
		zap.Int("try_count", r.it.TryCount), zap.Error(r.err))
}

func (s *Sink) doSend(ctx context.Context, dest *Destination, it *sender.Item) error {
	if dest == nil {
		return fmt.Errorf("httpsink: no destination resolved for item")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest.URL, bytes.NewReader(it.Payload))
	if err != nil {
		return fmt.Errorf("httpsink: build request: %w", err)
	}
	for k, v := range dest.Headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpsink: transport: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("httpsink: error %q while sending transaction", resp.Status)
	}
	return nil
}

// Stop halts Run and waits for it to return.
func (s *Sink) Stop() {
	close(s.stop)
	<-s.done
}
