package tasks

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer imposes the delay between two processed tracks.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RandomPacer waits a uniformly random duration in [lo, hi].
type RandomPacer struct {
	lo, hi time.Duration
	rng    *rand.Rand
}

// NewRandomPacer creates a pacer. Negative bounds are clamped to zero and inverted bounds swapped.
func NewRandomPacer(minDelay, maxDelay time.Duration) *RandomPacer {
	lo, hi := max(minDelay, 0), max(maxDelay, 0)
	if hi < lo {
		lo, hi = hi, lo
	}
	return &RandomPacer{
		lo:  lo,
		hi:  hi,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5c5c)),
	}
}

// Delay draws the next delay.
func (p *RandomPacer) Delay() time.Duration {
	if p.hi <= p.lo {
		return p.lo
	}
	return p.lo + time.Duration(p.rng.Int64N(int64(p.hi-p.lo)+1))
}

// Wait sleeps for a fresh delay or until ctx is done.
func (p *RandomPacer) Wait(ctx context.Context) error {
	d := p.Delay()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
