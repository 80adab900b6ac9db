// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit paces calls to external providers.
package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Limiter spaces operations a fixed interval apart, with optional jitter.
// It is safe for concurrent use.
type Limiter struct {
	ticker   *time.Ticker
	interval time.Duration
	jitter   float64 // 0.0 to 1.0, fraction of interval
	ch       <-chan time.Time
}

// New creates a limiter that releases one operation per interval. A jitter
// of j stretches each wait by up to j*interval, so New(1s, 1.0) lands
// consecutive calls roughly 1-2 s apart. A non-positive interval disables
// pacing entirely.
func New(interval time.Duration, jitter float64) *Limiter {
	if interval <= 0 {
		return &Limiter{}
	}
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}

	ticker := time.NewTicker(interval)
	return &Limiter{
		ticker:   ticker,
		interval: interval,
		jitter:   jitter,
		ch:       ticker.C,
	}
}

// Wait blocks until the next operation may proceed, or until the context
// is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.ch == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ch:
	}

	if l.jitter > 0 {
		extra := time.Duration(rand.Float64() * l.jitter * float64(l.interval))
		if extra > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(extra):
			}
		}
	}
	return nil
}

// Stop releases the limiter's ticker.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
}
