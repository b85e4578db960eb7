// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// HackerNewsTarget is the only target the Hacker News adapter knows.
const HackerNewsTarget = "topstories"

// HackerNews reads top stories from the Hacker News Firebase API.
type HackerNews struct {
	base string
	opts Options
}

// NewHackerNews returns an adapter for the API at base.
func NewHackerNews(base string, opts Options) (*HackerNews, error) {
	b, err := validBase(base)
	if err != nil {
		return nil, fmt.Errorf("hacker news: %w", err)
	}
	return &HackerNews{base: b, opts: opts.withDefaults()}, nil
}

func (h *HackerNews) Name() string       { return "hackernews" }
func (h *HackerNews) Kind() acquire.Kind { return acquire.KindAPI }

type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Text        string `json:"text"`
}

// Fetch reads up to limit top stories. The target names the story list.
func (h *HackerNews) Fetch(ctx context.Context, target string, limit int) []types.Item {
	if target == "" {
		target = HackerNewsTarget
	}
	var ids []int
	if err := httpGetJSON(ctx, h.opts, fmt.Sprintf("%s/%s.json", h.base, target), &ids); err != nil {
		h.opts.warnf("hacker news %s: %v", target, err)
		return nil
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	var items []types.Item
	for _, id := range ids {
		var it hnItem
		if err := httpGetJSON(ctx, h.opts, fmt.Sprintf("%s/item/%d.json", h.base, id), &it); err != nil {
			h.opts.warnf("hacker news item %d: %v", id, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if it.Type != "story" {
			continue
		}
		u := it.URL
		if u == "" {
			u = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
		}
		items = append(items, types.Item{
			ID:           fmt.Sprintf("hn_%d", id),
			Source:       "Hacker News",
			Title:        it.Title,
			URL:          u,
			Score:        it.Score,
			CommentCount: it.Descendants,
			Hint:         truncateRunes(stripHTML(it.Text), types.MaxHintRunes),
		})
	}
	return items
}
