// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// PullPush reads submissions and comments from the PullPush Reddit
// archive. Only submissions newer than the window are returned.
type PullPush struct {
	base   string
	window time.Duration
	opts   Options

	// Now is the clock used for the window. Tests pin it.
	Now func() time.Time
}

// NewPullPush returns an archive adapter for the API at base.
func NewPullPush(base string, window time.Duration, opts Options) (*PullPush, error) {
	b, err := validBase(base)
	if err != nil {
		return nil, fmt.Errorf("pullpush: %w", err)
	}
	return &PullPush{base: b, window: window, opts: opts.withDefaults(), Now: time.Now}, nil
}

func (p *PullPush) Name() string       { return "pullpush" }
func (p *PullPush) Kind() acquire.Kind { return acquire.KindAPI }

// Fetch returns the top-scored recent submissions of sub.
func (p *PullPush) Fetch(ctx context.Context, sub string, limit int) []types.Item {
	q := url.Values{}
	q.Set("subreddit", sub)
	q.Set("sort", "desc")
	q.Set("sort_type", "score")
	q.Set("size", fmt.Sprint(limit))
	q.Set("after", fmt.Sprint(p.Now().Add(-p.window).Unix()))
	u := p.base + "/search/submission/?" + q.Encode()

	var resp struct {
		Data []listing `json:"data"`
	}
	if err := httpGetJSON(ctx, p.opts, u, &resp); err != nil {
		p.opts.warnf("pullpush r/%s: %v", sub, err)
		return nil
	}

	var items []types.Item
	for _, l := range resp.Data {
		if l.Stickied || l.Removed != "" || l.ID == "" {
			continue
		}
		items = append(items, l.item(sub))
	}
	return items
}

// Comments returns the top comments of a reddit item.
func (p *PullPush) Comments(ctx context.Context, item types.Item) []types.Comment {
	id := strings.TrimPrefix(item.ID, "reddit_")
	if id == item.ID || id == "" {
		return nil
	}
	q := url.Values{}
	q.Set("link_id", id)
	q.Set("sort", "desc")
	q.Set("sort_type", "score")
	q.Set("size", fmt.Sprint(types.MaxTopComments))
	u := p.base + "/search/comment/?" + q.Encode()

	var resp struct {
		Data []rawComment `json:"data"`
	}
	if err := httpGetJSON(ctx, p.opts, u, &resp); err != nil {
		p.opts.warnf("pullpush comments %s: %v", id, err)
		return nil
	}

	var out []types.Comment
	for _, c := range resp.Data {
		if c.usable() {
			out = append(out, c.comment())
		}
	}
	return types.RankComments(out)
}
