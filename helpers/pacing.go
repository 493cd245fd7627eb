package helpers

import (
	"context"
	"math/rand"
	"time"
)

// Sleeper blocks for a duration or until the context is done
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f(ctx, d)
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// RealSleeper sleeps on the wall clock
var RealSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
})

// Pacer throttles the request rate against a target host
type Pacer interface {
	Pace(ctx context.Context) error
}

// RandomPacer waits a duration drawn uniformly from [Min, Max]
type RandomPacer struct {
	Min     time.Duration
	Max     time.Duration
	Sleeper Sleeper
}

// DefaultPaceMin and DefaultPaceMax bound the pause after every successful fetch
const (
	DefaultPaceMin = 1100 * time.Millisecond
	DefaultPaceMax = 2600 * time.Millisecond
)

// NewRandomPacer creates a pacer over [min, max] using the wall clock
func NewRandomPacer(min, max time.Duration) *RandomPacer {
	return &RandomPacer{Min: min, Max: max, Sleeper: RealSleeper}
}

// Delay draws the next pause
func (p *RandomPacer) Delay() time.Duration {
	lo, hi := p.Min, p.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + time.Duration(rand.Int63n(int64(hi-lo)+1))
}

// Pace sleeps for a random delay
func (p *RandomPacer) Pace(ctx context.Context) error {
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = RealSleeper
	}
	return sleeper.Sleep(ctx, p.Delay())
}

// NoPacer never waits
type NoPacer struct{}

// Pace returns immediately
func (NoPacer) Pace(context.Context) error { return nil }
