// Package util holds small shared helpers with no domain knowledge.
package util

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	// DefaultInterval is the default minimum time between requests
	DefaultInterval = 100 * time.Millisecond
	// DefaultBurst is the default burst size
	DefaultBurst = 5
)

// Pacer is a token bucket limiter that spaces out requests to the
// backend. When the backend answers 429 the interval grows; successful
// stretches reset it.
type Pacer struct {
	mu          sync.Mutex
	last        time.Time
	interval    time.Duration
	minInterval time.Duration
	maxInterval time.Duration
	tokens      int
	maxTokens   int
}

// NewPacer creates a Pacer allowing one request per interval with the
// given burst allowance.
func NewPacer(interval time.Duration, burst int) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &Pacer{
		last:        time.Now(),
		interval:    interval,
		minInterval: interval,
		maxInterval: 5 * time.Second,
		tokens:      burst,
		maxTokens:   burst,
	}
}

// Wait blocks until a token is available or the context is cancelled
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()

	now := time.Now()
	refill := int(float64(now.Sub(p.last)) / float64(p.interval))
	if refill > 0 {
		p.tokens += refill
		if p.tokens > p.maxTokens {
			p.tokens = p.maxTokens
		}
		p.last = now
	}

	if p.tokens > 0 {
		p.tokens--
		p.mu.Unlock()
		return nil
	}

	// Jitter up to 20% so concurrent callers don't wake in lockstep
	wait := p.interval + time.Duration(rand.Float64()*0.2*float64(p.interval))
	next := p.last.Add(wait)
	p.mu.Unlock()

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		p.mu.Lock()
		p.last = next
		p.tokens = 0
		p.mu.Unlock()
		return nil
	}
}

// OnThrottle widens the interval after a 429 and returns how long the
// caller should wait, honoring a server-provided Retry-After when it is
// longer.
func (p *Pacer) OnThrottle(retryAfter time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.interval = time.Duration(1.5 * float64(p.interval))
	if p.interval > p.maxInterval {
		p.interval = p.maxInterval
	}

	if retryAfter > p.interval {
		return retryAfter
	}
	return p.interval
}

// Reset restores the minimum interval after a healthy stretch
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = p.minInterval
}

// Interval returns the current pacing interval
func (p *Pacer) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
