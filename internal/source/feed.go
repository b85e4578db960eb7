// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Feed reads generic RSS and Atom feeds. Targets are feed names; each name
// maps to a URL and becomes the items' source label.
type Feed struct {
	urls   map[string]string
	opts   Options
	parser *gofeed.Parser
}

// NewFeed returns an adapter over the configured feed sources.
func NewFeed(sources []types.FeedSource, opts Options) (*Feed, error) {
	if len(sources) == 0 {
		return nil, errors.New("feeds: no sources configured")
	}
	f := &Feed{urls: map[string]string{}, opts: opts.withDefaults(), parser: gofeed.NewParser()}
	for _, s := range sources {
		if s.Name == "" {
			return nil, fmt.Errorf("feeds: source %q has no name", s.URL)
		}
		if _, err := validBase(s.URL); err != nil {
			return nil, fmt.Errorf("feeds: %w", err)
		}
		f.urls[s.Name] = s.URL
	}
	return f, nil
}

func (f *Feed) Name() string       { return "rss" }
func (f *Feed) Kind() acquire.Kind { return acquire.KindFeed }

// Fetch reads up to limit entries of the named feed.
func (f *Feed) Fetch(ctx context.Context, name string, limit int) []types.Item {
	u, ok := f.urls[name]
	if !ok {
		f.opts.warnf("rss: unknown feed %q", name)
		return nil
	}
	feed, err := fetchFeed(ctx, f.opts, f.parser, u)
	if err != nil {
		f.opts.warnf("rss %s: %v", name, err)
		return nil
	}

	var items []types.Item
	for _, entry := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		if entry.Link == "" {
			continue
		}
		items = append(items, types.Item{
			ID:        "rss_" + hashID(entry.Link),
			Source:    name,
			Title:     entry.Title,
			URL:       entry.Link,
			Hint:      truncateRunes(stripHTML(entry.Description), types.MaxHintRunes),
			Thumbnail: entryImage(entry),
		})
	}
	return items
}

// entryImage tries media thumbnails, media content, image enclosures, and
// finally the item image.
func entryImage(entry *gofeed.Item) string {
	if u := mediaThumbnail(entry); u != "" {
		return u
	}
	if u := mediaImage(entry); u != "" {
		return u
	}
	if u := enclosureImage(entry); u != "" {
		return u
	}
	if entry.Image != nil {
		return entry.Image.URL
	}
	return ""
}
