package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// RandomDelay paces upstream requests by sleeping a random duration inside
// [Min, Max] between consecutive calls. The exchange publishes no explicit
// rate-limit header for public candles, so jittered spacing is the contract.
type RandomDelay struct {
	Min time.Duration
	Max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomDelay creates a policy over the given delay range.
func NewRandomDelay(min, max time.Duration) *RandomDelay {
	if max < min {
		max = min
	}
	return &RandomDelay{
		Min: min,
		Max: max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pause blocks for a random delay or until the context is cancelled.
func (p *RandomDelay) Pause(ctx context.Context) error {
	d := p.Min
	if span := p.Max - p.Min; span > 0 {
		p.mu.Lock()
		d += time.Duration(p.rng.Int63n(int64(span) + 1))
		p.mu.Unlock()
	}
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
