// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

const defaultFeedChunk = 6

// RedditFeed reads subreddit Atom feeds. Feeds carry no score or comment
// counts, so it is the last resort of the Reddit chain.
type RedditFeed struct {
	base      string
	chunkSize int
	pacer     *acquire.Pacer
	opts      Options
	parser    *gofeed.Parser
}

// NewRedditFeed returns a feed adapter for base. Batch fetches combine
// chunkSize subreddits per request and wait the pacer's target delay
// between requests.
func NewRedditFeed(base string, chunkSize int, pacer *acquire.Pacer, opts Options) (*RedditFeed, error) {
	b, err := validBase(base)
	if err != nil {
		return nil, fmt.Errorf("reddit feed: %w", err)
	}
	if chunkSize < 1 {
		chunkSize = defaultFeedChunk
	}
	return &RedditFeed{
		base:      b,
		chunkSize: chunkSize,
		pacer:     pacer,
		opts:      opts.withDefaults(),
		parser:    gofeed.NewParser(),
	}, nil
}

func (r *RedditFeed) Name() string       { return "reddit-rss" }
func (r *RedditFeed) Kind() acquire.Kind { return acquire.KindFeed }

// Fetch reads the feed of a single subreddit.
func (r *RedditFeed) Fetch(ctx context.Context, sub string, limit int) []types.Item {
	u := fmt.Sprintf("%s/r/%s/.rss?limit=%d", r.base, sub, limit)
	feed, err := fetchFeed(ctx, r.opts, r.parser, u)
	if err != nil {
		r.opts.warnf("reddit rss r/%s: %v", sub, err)
		return nil
	}
	var items []types.Item
	for _, entry := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, feedEntry(entry, sub))
	}
	return items
}

// FetchAll reads subs through combined feeds, falling back to one feed per
// subreddit for any chunk whose combined feed fails. Each subreddit keeps
// at most limit items.
func (r *RedditFeed) FetchAll(ctx context.Context, subs []string, limit int) ([]types.Item, int) {
	var items []types.Item
	ok := 0
	first := true
	wait := func() bool {
		if first {
			first = false
			return true
		}
		return r.pacer.BetweenTargets(ctx) == nil
	}

	for start := 0; start < len(subs); start += r.chunkSize {
		chunk := subs[start:min(start+r.chunkSize, len(subs))]
		if !wait() {
			return items, ok
		}

		u := fmt.Sprintf("%s/r/%s/hot/.rss?limit=%d", r.base, strings.Join(chunk, "+"), limit*len(chunk))
		feed, err := fetchFeed(ctx, r.opts, r.parser, u)
		if err != nil || len(feed.Items) == 0 {
			if err != nil {
				r.opts.warnf("reddit rss chunk %s: %v; trying one by one", strings.Join(chunk, "+"), err)
			}
			for _, sub := range chunk {
				if !wait() {
					return items, ok
				}
				got := r.Fetch(ctx, sub, limit)
				if len(got) > 0 {
					ok++
					items = append(items, got...)
				}
			}
			continue
		}

		perSub := map[string]int{}
		for _, entry := range feed.Items {
			it := feedEntry(entry, "")
			sub := strings.TrimPrefix(it.Source, "Reddit r/")
			if limit > 0 && perSub[strings.ToLower(sub)] >= limit {
				continue
			}
			perSub[strings.ToLower(sub)]++
			items = append(items, it)
		}
		ok += len(perSub)
	}
	return items, ok
}

// feedEntry converts a subreddit feed entry. When sub is empty the
// subreddit is taken from the entry's permalink.
func feedEntry(entry *gofeed.Item, sub string) types.Item {
	link := entry.Link
	id := entry.GUID
	if i := strings.LastIndex(id, "_"); i >= 0 && i < len(id)-1 {
		id = id[i+1:]
	} else {
		id = hashID(link)
	}

	var permalink string
	if i := strings.Index(link, "reddit.com"); i >= 0 {
		permalink = link[i+len("reddit.com"):]
	}
	if sub == "" {
		sub = subredditOf(permalink)
		if sub == "" {
			sub = "unknown"
		}
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}
	thumb := firstImage(entry.Content)
	if thumb == "" {
		thumb = mediaThumbnail(entry)
	}

	return types.Item{
		ID:        "reddit_" + id,
		Source:    redditSource(sub),
		Title:     entry.Title,
		URL:       link,
		Permalink: permalink,
		Hint:      truncateRunes(stripHTML(summary), types.MaxHintRunes),
		Thumbnail: thumb,
	}
}
