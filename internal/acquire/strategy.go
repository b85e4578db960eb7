// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire runs the acquisition engine: for each source category it
// selects a working strategy through tiered probing, walks the category's
// targets sequentially under the pacer, fails over between interchangeable
// endpoints with a circuit breaker, and enriches the best items with
// comments from a separately selected API tier.
package acquire

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Kind classifies a strategy by what it can deliver.
type Kind int

const (
	// KindScrape parses HTML pages; yields score and comment counts.
	KindScrape Kind = iota
	// KindAPI reads a JSON API; can usually fetch comment detail too.
	KindAPI
	// KindFeed reads syndication feeds; no score, no comments.
	KindFeed
)

func (k Kind) String() string {
	switch k {
	case KindScrape:
		return "scrape"
	case KindAPI:
		return "api"
	case KindFeed:
		return "feed"
	default:
		return "unknown"
	}
}

// Strategy is one acquisition method for a source category. Fetch never
// fails loudly: an unavailable target yields an empty slice.
type Strategy interface {
	Name() string
	Kind() Kind
	Fetch(ctx context.Context, target string, limit int) []types.Item
}

// Prober is implemented by strategies whose availability check is more than
// a single fetch of the probe target, such as multi-endpoint strategies.
type Prober interface {
	Probe(ctx context.Context, target string) bool
}

// Exhauster is implemented by strategies that can give up mid-cycle. The
// runner stops walking targets once Exhausted reports true.
type Exhauster interface {
	Exhausted() bool
}

// BatchFetcher is implemented by strategies that can cover every target in
// fewer requests than one per target. It reports how many targets yielded
// items.
type BatchFetcher interface {
	FetchAll(ctx context.Context, targets []string, limit int) ([]types.Item, int)
}

// CommentFetcher fetches the top comments of one item. A failure yields nil.
type CommentFetcher interface {
	Comments(ctx context.Context, item types.Item) []types.Comment
}

// probeLimit is the item count requested when probing a strategy.
const probeLimit = 2

func logf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format, args...)
}
