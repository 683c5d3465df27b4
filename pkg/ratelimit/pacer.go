// Package ratelimit paces requests against the remote API. The remote
// end enforces a hard rate limit, so collection is sequential with a
// blocking pause between requests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// AdaptivePacer is the mutable state of a collection run: the pause
// taken after each successful request and the count of consecutive
// failures. Any failure grows the pause by a fixed increment and the
// growth is permanent: the run self-throttles upward and never speeds
// back up.
type AdaptivePacer struct {
	delay     time.Duration
	increment time.Duration
	failures  int
	mu        sync.Mutex
}

// NewAdaptivePacer creates a pacer with the initial inter-request delay
// and the per-failure increment.
func NewAdaptivePacer(delay, increment time.Duration) *AdaptivePacer {
	return &AdaptivePacer{
		delay:     delay,
		increment: increment,
	}
}

// Wait blocks for the current inter-request delay or until the context
// is cancelled.
func (p *AdaptivePacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	delay := p.delay
	p.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordFailure notes a failed request: the failure counter rises and
// the inter-request delay grows by the increment.
func (p *AdaptivePacer) RecordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
	p.delay += p.increment
}

// RecordSuccess resets the consecutive-failure counter. The delay keeps
// whatever growth earlier failures caused.
func (p *AdaptivePacer) RecordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = 0
}

// Delay returns the current inter-request delay
func (p *AdaptivePacer) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// ConsecutiveFailures returns the current failure streak
func (p *AdaptivePacer) ConsecutiveFailures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}
