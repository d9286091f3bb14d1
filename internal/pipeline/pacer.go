package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/config"
)

// Pacer spaces out browser interactions: a rate limiter caps navigation
// throughput while a randomized delay after each interaction emulates
// human pacing. Both are tuning knobs, not correctness-bearing; the zero
// config yields a no-op pacer for tests.
type Pacer struct {
	limiter *rate.Limiter
	min     time.Duration
	max     time.Duration
}

// NewPacer builds a Pacer from config. nav_per_minute <= 0 disables the
// limiter; max_delay_ms <= 0 disables the jitter.
func NewPacer(cfg config.PacingConfig) *Pacer {
	p := &Pacer{
		min: time.Duration(cfg.MinDelayMs) * time.Millisecond,
		max: time.Duration(cfg.MaxDelayMs) * time.Millisecond,
	}
	if cfg.NavPerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(float64(cfg.NavPerMinute)/60.0), 1)
	}
	return p
}

// Pause blocks until the limiter admits the next interaction, then sleeps
// a random duration in [min, max]. Returns early on context cancellation.
func (p *Pacer) Pause(ctx context.Context) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if p.max <= 0 {
		return nil
	}

	d := p.min
	if span := p.max - p.min; span > 0 {
		d += rand.N(span)
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
