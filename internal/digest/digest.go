// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest drains the accumulation store downstream: it selects a
// source-balanced ranking of the accumulated records, hands it to a
// summarizer, delivers the summaries to a channel, and empties the store
// only after delivery succeeded.
package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/trendcrawl/internal/archive"
	"github.com/pdiddy/trendcrawl/internal/store"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// ErrNotDrained reports a drain that stopped before delivery completed.
// The store is left as it was.
var ErrNotDrained = errors.New("store not drained")

// ErrPartialSummary reports that some records of the selection were not
// summarized.
var ErrPartialSummary = errors.New("partial summary")

// Summarizer turns a ranked selection into digest entries. Any error,
// including one wrapping ErrPartialSummary alongside entries, means the
// selection was not fully summarized.
type Summarizer interface {
	Summarize(ctx context.Context, records []types.Record) ([]types.DigestEntry, error)
}

// Deliverer publishes digest entries to a channel.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, date time.Time, entries []types.DigestEntry) error
}

// Recorder keeps the history of delivered digests.
type Recorder interface {
	RecordDigest(ctx context.Context, d archive.Digest) (string, error)
}

// Drainer runs one drain of the store at StorePath.
type Drainer struct {
	StorePath   string
	MaxPerGroup int

	Summarizer Summarizer
	Deliverer  Deliverer

	// Archive is optional; recording failures are warnings.
	Archive Recorder

	// Log receives progress and warnings.
	Log io.Writer

	Now func() time.Time
}

// Result describes a completed drain.
type Result struct {
	Stored   int    `json:"stored" yaml:"stored"`
	Selected int    `json:"selected" yaml:"selected"`
	Entries  int    `json:"entries" yaml:"entries"`
	Channel  string `json:"channel" yaml:"channel"`
	DigestID string `json:"digest_id,omitempty" yaml:"digest_id,omitempty"`
}

// Drain selects, summarizes, and delivers the accumulated records, then
// empties the store. Any failure before the store is reset wraps
// ErrNotDrained and leaves the store untouched.
func (d *Drainer) Drain(ctx context.Context) (Result, error) {
	w := d.Log
	if w == nil {
		w = io.Discard
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	var res Result

	st, err := store.Load(d.StorePath)
	if err != nil {
		return res, fmt.Errorf("%w: loading store: %w", ErrNotDrained, err)
	}
	res.Stored = st.Len()

	selected := Select(st.Records(), d.MaxPerGroup)
	res.Selected = len(selected)
	if len(selected) == 0 {
		return res, fmt.Errorf("%w: store is empty", ErrNotDrained)
	}
	counts := GroupCounts(selected)
	fmt.Fprintf(w, "selected %d of %d posts (hn %d, reddit %d, rss %d)\n",
		len(selected), res.Stored, counts[GroupHN], counts[GroupReddit], counts[GroupRSS])

	entries, err := d.Summarizer.Summarize(ctx, selected)
	if err != nil {
		return res, fmt.Errorf("%w: summarizing: %w", ErrNotDrained, err)
	}
	if len(entries) == 0 {
		return res, fmt.Errorf("%w: summarizer returned no entries", ErrNotDrained)
	}
	res.Entries = len(entries)

	date := now()
	res.Channel = d.Deliverer.Name()
	if err := d.Deliverer.Deliver(ctx, date, entries); err != nil {
		return res, fmt.Errorf("%w: delivering to %s: %w", ErrNotDrained, res.Channel, err)
	}

	if d.Archive != nil {
		id, err := d.Archive.RecordDigest(context.WithoutCancel(ctx), archive.Digest{
			CreatedAt: date,
			Channel:   res.Channel,
			Posts:     len(selected),
			Entries:   entries,
		})
		if err != nil {
			fmt.Fprintf(w, "  warning: recording digest: %v\n", err)
		} else {
			res.DigestID = id
		}
	}

	st.Reset()
	if err := store.Save(d.StorePath, st); err != nil {
		return res, fmt.Errorf("clearing store after delivery: %w", err)
	}
	return res, nil
}
