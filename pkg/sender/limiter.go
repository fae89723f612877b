package sender

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter gates queue draining by raw byte size, backed by
// golang.org/x/time/rate's token bucket.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter allows up to bytesPerSecond bytes/sec, bursting up to
// burstBytes.
func NewRateLimiter(bytesPerSecond, burstBytes int) *RateLimiter {
	return &RateLimiter{lim: rate.NewLimiter(rate.Limit(bytesPerSecond), burstBytes)}
}

func (r *RateLimiter) TryAcquire(it *Item) bool {
	return r.lim.AllowN(time.Now(), int(it.RawByteSize))
}

// Release is a no-op: a token-bucket limiter's budget isn't given back
// once an item starts sending, even if it ultimately fails.
func (r *RateLimiter) Release(*Item) {}

// ConcurrencyLimiter is a simple counting semaphore bounding how many
// items may be Sending at once for one destination identity (project,
// region, or logstore).
type ConcurrencyLimiter struct {
	mu      sync.Mutex
	max     int
	current int
}

// NewConcurrencyLimiter allows up to max concurrently-sending items.
func NewConcurrencyLimiter(max int) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{max: max}
}

func (c *ConcurrencyLimiter) TryAcquire(*Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.max > 0 && c.current >= c.max {
		return false
	}
	c.current++
	return true
}

func (c *ConcurrencyLimiter) Release(*Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current > 0 {
		c.current--
	}
}

// Registry shares ConcurrencyLimiters by destination key (e.g.
// "project/region" or "project/logstore") across every Queue that targets
// the same destination. Entries are refcounted and deregistered on last
// release: Go has no direct analogue of the original's std::weak_ptr-based
// registry, so this is the idiomatic substitute (see DESIGN.md).
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*registryEntry
	max      int
}

type registryEntry struct {
	limiter *ConcurrencyLimiter
	refs    int
}

// NewRegistry returns a Registry whose limiters all share the same bound.
func NewRegistry(maxPerKey int) *Registry {
	return &Registry{limiters: make(map[string]*registryEntry), max: maxPerKey}
}

// Acquire returns the shared limiter for key, creating it on first use and
// incrementing its refcount.
func (r *Registry) Acquire(key string) *ConcurrencyLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.limiters[key]
	if !ok {
		e = &registryEntry{limiter: NewConcurrencyLimiter(r.max)}
		r.limiters[key] = e
	}
	e.refs++
	return e.limiter
}

// Release decrements key's refcount, removing the limiter once it reaches
// zero so the registry doesn't grow unbounded across pipeline restarts.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.limiters[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.limiters, key)
	}
}
