// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"time"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Pacer enforces the fixed waits between sequential operations. A nil
// Pacer never waits.
type Pacer struct {
	TargetDelay   time.Duration
	EndpointDelay time.Duration
	BatchDelay    time.Duration

	// Sleep replaces the real wait; tests record the requested durations.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer returns a Pacer with the configured delays.
func NewPacer(cfg types.PacingConfig) *Pacer {
	return &Pacer{
		TargetDelay:   cfg.TargetDelay,
		EndpointDelay: cfg.EndpointDelay,
		BatchDelay:    cfg.BatchDelay,
	}
}

// BetweenTargets waits between successive targets of the same endpoint.
func (p *Pacer) BetweenTargets(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.wait(ctx, p.TargetDelay)
}

// BetweenEndpoints waits before probing another endpoint.
func (p *Pacer) BetweenEndpoints(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.wait(ctx, p.EndpointDelay)
}

// BetweenBatches waits between enrichment calls.
func (p *Pacer) BetweenBatches(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.wait(ctx, p.BatchDelay)
}

func (p *Pacer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
