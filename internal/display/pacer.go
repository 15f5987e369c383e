package display

import (
	"context"
	"time"
)

// Pacer holds frames to a minimum interval, independently of key polling.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

// NewPacer creates a Pacer; a non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait sleeps until interval has passed since the previous Wait returned,
// or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	if !p.last.IsZero() {
		if remaining := p.interval - time.Since(p.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	p.last = time.Now()
	return nil
}
