// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"io"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Category is one source category: an ordered strategy list and the
// targets walked with whichever strategy wins the probe.
type Category struct {
	Name        string
	Targets     []string
	ProbeTarget string
	Limit       int
	Strategies  []Strategy

	// IndependentTargets marks targets served by different hosts; the
	// inter-target wait is skipped between them.
	IndependentTargets bool

	// CommentTiers are probed in order when the active strategy cannot
	// fetch comments itself. Entries must implement CommentFetcher.
	CommentTiers []Strategy
	EnrichTopK   int
}

// Report describes how a category fared in one cycle.
type Report struct {
	Category     string    `json:"category" yaml:"category"`
	Active       string    `json:"active,omitempty" yaml:"active,omitempty"`
	Attempts     []Attempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	TargetsOK    int       `json:"targets_ok" yaml:"targets_ok"`
	TargetsTotal int       `json:"targets_total" yaml:"targets_total"`
	Items        int       `json:"items" yaml:"items"`
	Skipped      bool      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Exhausted    bool      `json:"exhausted,omitempty" yaml:"exhausted,omitempty"`
	Switches     int       `json:"switches,omitempty" yaml:"switches,omitempty"`
	CommentTier  string    `json:"comment_tier,omitempty" yaml:"comment_tier,omitempty"`
	Enriched     int       `json:"enriched,omitempty" yaml:"enriched,omitempty"`
}

// Runner acquires categories one at a time.
type Runner struct {
	Pacer *Pacer
	Log   io.Writer
}

// Run resolves the category's active strategy, walks its targets in order,
// and enriches the result. A category whose strategies all fail yields no
// items and a Report with Skipped set.
func (r *Runner) Run(ctx context.Context, cat Category) ([]types.Item, Report) {
	w := r.Log
	if w == nil {
		w = io.Discard
	}
	rep := Report{Category: cat.Name, TargetsTotal: len(cat.Targets)}
	logf(w, "%s:\n", cat.Name)

	var active Strategy
	switch {
	case len(cat.Strategies) == 0:
	case cat.ProbeTarget == "":
		active = cat.Strategies[0]
	default:
		active, rep.Attempts = Resolve(ctx, cat.Strategies, cat.ProbeTarget, w)
	}
	if active == nil {
		rep.Skipped = true
		logf(w, "  skipped: no strategy available\n")
		return nil, rep
	}
	rep.Active = active.Name()

	var items []types.Item
	if b, ok := active.(BatchFetcher); ok {
		items, rep.TargetsOK = b.FetchAll(ctx, cat.Targets, cat.Limit)
	} else {
		items = r.walk(ctx, active, cat, &rep)
	}
	if s, ok := active.(interface{ Switches() int }); ok {
		rep.Switches = s.Switches()
	}

	if active.Kind() != KindFeed && cat.EnrichTopK > 0 && len(items) > 0 {
		if tier := r.commentTier(ctx, active, cat, w); tier != nil {
			rep.CommentTier = tier.Name()
			rep.Enriched = Enrich(ctx, items, tier.(CommentFetcher), cat.EnrichTopK, r.Pacer, w)
		} else {
			logf(w, "  warning: no comment source available, skipping enrichment\n")
		}
	}

	rep.Items = len(items)
	logf(w, "  %s: %d/%d targets, %d items\n", cat.Name, rep.TargetsOK, rep.TargetsTotal, rep.Items)
	return items, rep
}

func (r *Runner) walk(ctx context.Context, s Strategy, cat Category, rep *Report) []types.Item {
	ex, _ := s.(Exhauster)
	var items []types.Item
	for i, target := range cat.Targets {
		if i > 0 && !cat.IndependentTargets {
			if err := r.Pacer.BetweenTargets(ctx); err != nil {
				logf(r.Log, "  warning: %s interrupted: %v\n", cat.Name, err)
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		got := s.Fetch(ctx, target, cat.Limit)
		if cat.Limit > 0 && len(got) > cat.Limit {
			got = got[:cat.Limit]
		}
		if len(got) > 0 {
			rep.TargetsOK++
			items = append(items, got...)
		}
		if ex != nil && ex.Exhausted() {
			rep.Exhausted = true
			logf(r.Log, "  failed: %s exhausted after %d/%d targets, keeping %d items\n",
				s.Name(), rep.TargetsOK, i+1, len(items))
			break
		}
	}
	return items
}

// commentTier picks the comment source: the active strategy when it is an
// API strategy that fetches comments, else the first comment tier whose
// probe succeeds.
func (r *Runner) commentTier(ctx context.Context, active Strategy, cat Category, w io.Writer) Strategy {
	if _, ok := active.(CommentFetcher); ok && active.Kind() == KindAPI {
		return active
	}
	var tiers []Strategy
	for _, s := range cat.CommentTiers {
		if _, ok := s.(CommentFetcher); ok {
			tiers = append(tiers, s)
		}
	}
	if len(tiers) == 0 || cat.ProbeTarget == "" {
		return nil
	}
	logf(w, "  selecting comment source\n")
	tier, _ := Resolve(ctx, tiers, cat.ProbeTarget, w)
	return tier
}
