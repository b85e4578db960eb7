// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl sequences one acquisition cycle: load the run state and
// the accumulation store, decide whether the heavy category is due, run
// every category, merge, and persist both documents together.
package crawl

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/internal/archive"
	"github.com/pdiddy/trendcrawl/internal/store"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Recorder keeps the history of cycles.
type Recorder interface {
	RecordCycle(ctx context.Context, c archive.Cycle) (string, error)
}

// BuildFunc builds the categories of one cycle.
type BuildFunc func(cfg types.CrawlConfig, pacer *acquire.Pacer, w io.Writer) ([]acquire.Category, *acquire.Category, error)

// Options override the duty cycle for a single run. The run counter
// advances either way.
type Options struct {
	ForceHeavy bool
	SkipHeavy  bool
}

// Crawler runs crawl cycles.
type Crawler struct {
	Config types.Config
	Pacer  *acquire.Pacer

	// Archive is optional; recording failures are warnings.
	Archive Recorder

	// Log receives progress and warnings.
	Log io.Writer

	Now   func() time.Time
	Build BuildFunc
}

// New returns a Crawler with production wiring.
func New(cfg types.Config, w io.Writer) *Crawler {
	return &Crawler{
		Config: cfg,
		Pacer:  acquire.NewPacer(cfg.Crawl.Pacing),
		Log:    w,
		Now:    time.Now,
		Build:  Categories,
	}
}

// Summary describes one completed cycle.
type Summary struct {
	ID          string           `json:"id,omitempty" yaml:"id,omitempty"`
	StartedAt   time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time        `json:"finished_at" yaml:"finished_at"`
	RunCount    int              `json:"run_count" yaml:"run_count"`
	Heavy       bool             `json:"heavy" yaml:"heavy"`
	Reports     []acquire.Report `json:"reports" yaml:"reports"`
	Items       int              `json:"items" yaml:"items"`
	Added       int              `json:"added" yaml:"added"`
	Updated     int              `json:"updated" yaml:"updated"`
	StoreBefore int              `json:"store_before" yaml:"store_before"`
	StoreAfter  int              `json:"store_after" yaml:"store_after"`
	NextHeavyIn int              `json:"next_heavy_in" yaml:"next_heavy_in"`
}

// Run executes one cycle. A run state or store that cannot be read aborts
// the cycle before anything is written; so does a failed commit, which
// leaves both files as they were.
func (c *Crawler) Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.ForceHeavy && opts.SkipHeavy {
		return Summary{}, fmt.Errorf("force-heavy and skip-heavy are mutually exclusive")
	}
	w := c.Log
	if w == nil {
		w = io.Discard
	}
	sum := Summary{StartedAt: c.now()}

	always, heavy, err := c.Build(c.Config.Crawl, c.Pacer, w)
	if err != nil {
		return sum, fmt.Errorf("configuring sources: %w", err)
	}

	state, err := store.LoadState(c.Config.StatePath())
	if err != nil {
		c.recordFailure(ctx, sum, err, w)
		return sum, fmt.Errorf("loading run state: %w", err)
	}
	st, err := store.Load(c.Config.StorePath())
	if err != nil {
		c.recordFailure(ctx, sum, err, w)
		return sum, fmt.Errorf("loading store: %w", err)
	}
	sum.StoreBefore = st.Len()

	everyN := c.Config.Crawl.Reddit.EveryN
	runHeavy := heavy != nil && state.HeavyDue(everyN)
	switch {
	case heavy == nil:
	case opts.ForceHeavy:
		runHeavy = true
	case opts.SkipHeavy:
		runHeavy = false
	}
	sum.Heavy = runHeavy
	fmt.Fprintf(w, "cycle %d (heavy: %t)\n", state.RunCount+1, runHeavy)

	cats := always
	if runHeavy {
		cats = append(append([]acquire.Category(nil), always...), *heavy)
	}

	runner := &acquire.Runner{Pacer: c.Pacer, Log: w}
	var items []types.Item
	for _, cat := range cats {
		got, rep := runner.Run(ctx, cat)
		items = append(items, got...)
		sum.Reports = append(sum.Reports, rep)
	}
	if err := ctx.Err(); err != nil {
		c.recordFailure(ctx, sum, err, w)
		return sum, fmt.Errorf("cycle interrupted: %w", err)
	}
	sum.Items = len(items)

	now := c.now()
	ms := st.Merge(items, now)
	sum.Added, sum.Updated = ms.Added, ms.Updated
	sum.StoreAfter = st.Len()

	state.Advance(now, runHeavy)
	if err := store.Commit(c.Config.StorePath(), st, c.Config.StatePath(), state); err != nil {
		c.recordFailure(ctx, sum, err, w)
		return sum, fmt.Errorf("persisting cycle: %w", err)
	}
	sum.RunCount = state.RunCount
	sum.NextHeavyIn = state.CyclesUntilHeavy(everyN)
	sum.FinishedAt = c.now()

	if c.Archive != nil {
		id, err := c.Archive.RecordCycle(context.WithoutCancel(ctx), sum.cycle(""))
		if err != nil {
			fmt.Fprintf(w, "warning: archiving cycle: %v\n", err)
		}
		sum.ID = id
	}
	return sum, nil
}

func (c *Crawler) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// recordFailure archives a cycle that did not complete.
func (c *Crawler) recordFailure(ctx context.Context, sum Summary, cause error, w io.Writer) {
	if c.Archive == nil {
		return
	}
	sum.FinishedAt = c.now()
	if _, err := c.Archive.RecordCycle(context.WithoutCancel(ctx), sum.cycle(cause.Error())); err != nil {
		fmt.Fprintf(w, "warning: archiving failed cycle: %v\n", err)
	}
}

func (s Summary) cycle(errText string) archive.Cycle {
	return archive.Cycle{
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		RunCount:    s.RunCount,
		Heavy:       s.Heavy,
		Items:       s.Items,
		StoreBefore: s.StoreBefore,
		StoreAfter:  s.StoreAfter,
		Reports:     s.Reports,
		Error:       errText,
	}
}
