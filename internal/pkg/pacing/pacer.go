// Package pacing serializes calls to a rate-limited upstream provider.
//
// Every external provider this service talks to throttles independently, so
// each client owns one Pacer and never bursts more than one call per gap.
// This replaces inline sleeps with an object whose clock can be faked in
// tests.
package pacing

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum gap between consecutive calls.
type Pacer struct {
	gap   time.Duration
	sleep func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	nextAt time.Time
	now    func() time.Time
}

// Option configures a Pacer.
type Option func(*Pacer)

// WithClock replaces the time source and sleeper, for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pacer) {
		p.now = now
		p.sleep = sleep
	}
}

// New creates a Pacer with the given minimum gap. A non-positive gap
// disables pacing.
func New(gap time.Duration, opts ...Option) *Pacer {
	p := &Pacer{
		gap:   gap,
		now:   time.Now,
		sleep: ctxSleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until the gap since the previous call has elapsed, or the
// context is canceled. The first call never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.gap <= 0 {
		return nil
	}
	for {
		p.mu.Lock()
		wait := p.nextAt.Sub(p.now())
		if wait <= 0 {
			p.nextAt = p.now().Add(p.gap)
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Backoff sleeps once for the given duration, respecting cancellation. Used
// for the single fixed backoff after a provider rate-limit response.
func (p *Pacer) Backoff(ctx context.Context, d time.Duration) error {
	if p == nil {
		return ctxSleep(ctx, d)
	}
	return p.sleep(ctx, d)
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
