// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/internal/source"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Category names.
const (
	CategoryHackerNews = "hackernews"
	CategoryFeeds      = "rss"
	CategoryReddit     = "reddit"
)

// Categories builds the always-on categories and the heavy Reddit
// category from configuration. Disabled categories are omitted; heavy is
// nil when Reddit is disabled.
func Categories(cfg types.CrawlConfig, pacer *acquire.Pacer, w io.Writer) (always []acquire.Category, heavy *acquire.Category, err error) {
	client := &http.Client{Timeout: cfg.Timeout}
	apiOpts := source.Options{Client: client, UserAgent: cfg.UserAgent, Log: w}

	if cfg.HN.Enabled {
		hn, err := source.NewHackerNews(cfg.HN.BaseURL, apiOpts)
		if err != nil {
			return nil, nil, err
		}
		always = append(always, acquire.Category{
			Name:       CategoryHackerNews,
			Targets:    []string{source.HackerNewsTarget},
			Limit:      cfg.HN.Limit,
			Strategies: []acquire.Strategy{hn},
		})
	}

	if cfg.Feeds.Enabled {
		feed, err := source.NewFeed(cfg.Feeds.Sources, apiOpts)
		if err != nil {
			return nil, nil, err
		}
		names := make([]string, len(cfg.Feeds.Sources))
		for i, s := range cfg.Feeds.Sources {
			names[i] = s.Name
		}
		always = append(always, acquire.Category{
			Name:               CategoryFeeds,
			Targets:            names,
			Limit:              cfg.Feeds.LimitPerFeed,
			Strategies:         []acquire.Strategy{feed},
			IndependentTargets: true,
		})
	}

	if cfg.Reddit.Enabled {
		cat, err := redditCategory(cfg, pacer, apiOpts)
		if err != nil {
			return nil, nil, err
		}
		heavy = &cat
	}
	return always, heavy, nil
}

// redditCategory orders the Reddit strategies by fidelity: mirror scrape,
// archive API, direct JSON, then feeds.
func redditCategory(cfg types.CrawlConfig, pacer *acquire.Pacer, apiOpts source.Options) (acquire.Category, error) {
	rc := cfg.Reddit
	// Reddit's own endpoints turn away non-browser agents.
	browserOpts := apiOpts
	browserOpts.UserAgent = rc.Mirror.UserAgent

	redlib, err := source.NewRedlibStrategy(rc.Mirror, pacer, source.Options{Log: apiOpts.Log})
	if err != nil {
		return acquire.Category{}, err
	}
	pullpush, err := source.NewPullPush(rc.ArchiveBase, rc.ArchiveWindow, apiOpts)
	if err != nil {
		return acquire.Category{}, err
	}
	direct, err := source.NewRedditJSON(rc.DirectBases, browserOpts)
	if err != nil {
		return acquire.Category{}, err
	}
	feed, err := source.NewRedditFeed(rc.FeedBase, rc.FeedChunkSize, pacer, browserOpts)
	if err != nil {
		return acquire.Category{}, err
	}
	if len(rc.Subreddits) == 0 {
		return acquire.Category{}, fmt.Errorf("reddit: no subreddits configured")
	}

	return acquire.Category{
		Name:         CategoryReddit,
		Targets:      rc.Subreddits,
		ProbeTarget:  rc.ProbeTarget,
		Limit:        rc.LimitPerTarget,
		Strategies:   []acquire.Strategy{redlib, pullpush, direct, feed},
		CommentTiers: []acquire.Strategy{pullpush, direct},
		EnrichTopK:   rc.EnrichTopK,
	}, nil
}
