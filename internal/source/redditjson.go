// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// RedditJSON reads Reddit's public JSON listings, trying each base in
// order until one answers.
type RedditJSON struct {
	bases []string
	opts  Options
}

// NewRedditJSON returns a direct JSON adapter over bases.
func NewRedditJSON(bases []string, opts Options) (*RedditJSON, error) {
	if len(bases) == 0 {
		return nil, errors.New("reddit json: no base URLs configured")
	}
	r := &RedditJSON{opts: opts.withDefaults()}
	for _, raw := range bases {
		b, err := validBase(raw)
		if err != nil {
			return nil, fmt.Errorf("reddit json: %w", err)
		}
		r.bases = append(r.bases, b)
	}
	return r, nil
}

func (r *RedditJSON) Name() string       { return "reddit-json" }
func (r *RedditJSON) Kind() acquire.Kind { return acquire.KindAPI }

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type thingListing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

// Fetch returns the hot listing of sub without stickied posts.
func (r *RedditJSON) Fetch(ctx context.Context, sub string, limit int) []types.Item {
	var page thingListing
	if !r.getFirst(ctx, fmt.Sprintf("/r/%s/hot.json?limit=%d&raw_json=1", sub, limit), &page) {
		return nil
	}

	var items []types.Item
	for _, child := range page.Data.Children {
		var l listing
		if err := json.Unmarshal(child.Data, &l); err != nil || l.ID == "" || l.Stickied {
			continue
		}
		items = append(items, l.item(sub))
	}
	return items
}

// Comments returns the top comments of a reddit item by permalink.
func (r *RedditJSON) Comments(ctx context.Context, item types.Item) []types.Comment {
	if item.Permalink == "" {
		return nil
	}
	path := fmt.Sprintf("%s.json?sort=top&limit=%d&raw_json=1", trimSlash(item.Permalink), types.MaxTopComments)

	var pages []thingListing
	if !r.getFirst(ctx, path, &pages) || len(pages) < 2 {
		return nil
	}

	var out []types.Comment
	for _, child := range pages[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var c rawComment
		if err := json.Unmarshal(child.Data, &c); err != nil || !c.usable() {
			continue
		}
		out = append(out, c.comment())
	}
	return types.RankComments(out)
}

// getFirst decodes the first base that answers path.
func (r *RedditJSON) getFirst(ctx context.Context, path string, v any) bool {
	for _, b := range r.bases {
		err := httpGetJSON(ctx, r.opts, b+path, v)
		if err == nil {
			return true
		}
		r.opts.warnf("reddit json %s: %v", b, err)
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func trimSlash(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}
