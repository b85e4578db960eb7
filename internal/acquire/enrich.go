// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"io"
	"sort"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// MaxEnrich bounds the number of items enriched per category per cycle.
const MaxEnrich = 30

// Enrich attaches top comments to the k highest-scoring items, in place,
// waiting the inter-batch delay between calls. Items whose fetch fails keep
// their current comments. It returns the number of items that gained
// comments.
func Enrich(ctx context.Context, items []types.Item, src CommentFetcher, k int, pacer *Pacer, w io.Writer) int {
	if src == nil || k <= 0 || len(items) == 0 {
		return 0
	}
	if k > MaxEnrich {
		k = MaxEnrich
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].Score > items[idx[b]].Score
	})
	if len(idx) > k {
		idx = idx[:k]
	}

	enriched := 0
	for n, i := range idx {
		if n > 0 {
			if err := pacer.BetweenBatches(ctx); err != nil {
				logf(w, "  warning: enrichment interrupted: %v\n", err)
				break
			}
		}
		comments := src.Comments(ctx, items[i])
		if len(comments) == 0 {
			continue
		}
		items[i].TopComments = types.RankComments(comments)
		enriched++
	}
	logf(w, "  enriched %d/%d items with comments\n", enriched, len(idx))
	return enriched
}
