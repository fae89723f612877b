// Package backoff implements the exponential backoff policy the HTTP sink
// uses to cool down a destination after repeated failures, grounded on the
// ExpBackoffPolicy shape observed in comp/forwarder/defaultforwarder's
// blocked_endpoints tests (factor 2, base 2s, max 64s, recovery interval
// 2 successes, no recovery reset by default).
package backoff

import (
	"math"
	"sync"
	"time"
)

// Policy computes an increasing cool-down duration after consecutive
// errors and a decreasing one after consecutive successes.
type Policy struct {
	mu sync.Mutex

	baseSecs    float64
	factor      float64
	maxSecs     float64
	recoverStep int
	resetOnOK   bool

	errorCount int
	okCount    int
}

// Config mirrors the forwarder_backoff_* settings.
type Config struct {
	BaseSecs    float64
	Factor      float64
	MaxSecs     float64
	RecoverStep int
	ResetOnOK   bool
}

// DefaultConfig matches the defaults observed in the forwarder's blocked
// endpoint tests.
func DefaultConfig() Config {
	return Config{BaseSecs: 2, Factor: 2, MaxSecs: 64, RecoverStep: 2, ResetOnOK: false}
}

func New(cfg Config) *Policy {
	return &Policy{baseSecs: cfg.BaseSecs, factor: cfg.Factor, maxSecs: cfg.MaxSecs, recoverStep: cfg.RecoverStep, resetOnOK: cfg.ResetOnOK}
}

// GetBackoffDuration returns the cool-down duration for the current error
// streak: base * factor^errorCount, capped at maxSecs.
func (p *Policy) GetBackoffDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.baseSecs * math.Pow(p.factor, float64(p.errorCount))
	if d > p.maxSecs {
		d = p.maxSecs
	}
	return time.Duration(d * float64(time.Second))
}

// IncError records a failure, increasing the next backoff duration.
func (p *Policy) IncError() {
	p.mu.Lock()
	p.errorCount++
	p.okCount = 0
	p.mu.Unlock()
}

// IncSuccess records a success; after RecoverStep consecutive successes the
// error streak decays by one step (or resets entirely if ResetOnOK).
func (p *Policy) IncSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.okCount++
	if p.okCount < p.recoverStep {
		return
	}
	p.okCount = 0
	if p.resetOnOK {
		p.errorCount = 0
		return
	}
	if p.errorCount > 0 {
		p.errorCount--
	}
}

// ErrorCount reports the current consecutive-error streak, for tests and
// status reporting.
func (p *Policy) ErrorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorCount
}
