// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/trendcrawl/internal/acquire"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Redlib scrapes subreddit listings from Redlib mirror instances. It is an
// acquire.EndpointFetcher; wrap it with NewRedlibStrategy for failover.
type Redlib struct {
	opts        Options
	minBodySize int
}

// NewRedlib returns a mirror scraper. Bodies smaller than cfg.MinBodySize
// are treated as soft blocks.
func NewRedlib(cfg types.MirrorConfig, opts Options) *Redlib {
	if opts.Client == nil && cfg.Timeout > 0 {
		opts.Client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	return &Redlib{opts: opts.withDefaults(), minBodySize: cfg.MinBodySize}
}

// NewRedlibStrategy returns the mirror scraper behind an instance health
// tracker over cfg.Instances.
func NewRedlibStrategy(cfg types.MirrorConfig, pacer *acquire.Pacer, opts Options) (*acquire.MultiEndpoint, error) {
	if len(cfg.Instances) == 0 {
		return nil, errors.New("redlib: no mirror instances configured")
	}
	instances := make([]string, len(cfg.Instances))
	for i, inst := range cfg.Instances {
		b, err := validBase(inst)
		if err != nil {
			return nil, fmt.Errorf("redlib: %w", err)
		}
		instances[i] = b
	}
	return acquire.NewMultiEndpoint("redlib", acquire.KindScrape, NewRedlib(cfg, opts),
		instances, cfg.FailThreshold, pacer, opts.Log), nil
}

// FetchFrom scrapes the hot listing of sub from the mirror at base.
func (r *Redlib) FetchFrom(ctx context.Context, base, sub string, limit int) []types.Item {
	u := fmt.Sprintf("%s/r/%s/hot", base, sub)
	h := r.opts.header("text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")

	body, err := httpGet(ctx, r.opts, u, h)
	if err != nil {
		r.opts.warnf("redlib %s r/%s: %v", base, sub, err)
		return nil
	}
	if len(body) < r.minBodySize {
		r.opts.warnf("redlib %s r/%s: %d-byte page looks blocked", base, sub, len(body))
		return nil
	}
	items, err := parseRedlib(body, sub, base)
	if err != nil {
		r.opts.warnf("redlib %s r/%s: %v", base, sub, err)
		return nil
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// parseRedlib extracts posts from a Redlib listing page. Posts missing an
// id or a title are skipped.
func parseRedlib(body []byte, sub, base string) ([]types.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var items []types.Item
	doc.Find("div.post").Each(func(_ int, post *goquery.Selection) {
		id, _ := post.Attr("id")
		if id == "" {
			return
		}
		titleEl := post.Find("h2.post_title a, a.post_title").First()
		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			return
		}

		permalink := fmt.Sprintf("/r/%s/comments/%s/", sub, id)
		if href, _ := titleEl.Attr("href"); strings.Contains(href, "/comments/") {
			permalink = href
		}

		it := types.Item{
			ID:           "reddit_" + id,
			Source:       redditSource(sub),
			Title:        title,
			URL:          "https://reddit.com" + permalink,
			Permalink:    permalink,
			Score:        redlibCount(post.Find(".post_score").First()),
			CommentCount: redlibCount(post.Find("a.post_comments").First()),
			Hint:         truncateRunes(strings.Join(strings.Fields(post.Find("div.post_body").First().Text()), " "), types.MaxHintRunes),
		}

		if thumb := post.Find("a.post_thumbnail").First(); thumb.Length() > 0 {
			if ext, _ := thumb.Attr("href"); strings.HasPrefix(ext, "http") {
				it.URL = ext
			}
			img := thumb.Find("image, img").First()
			src := img.AttrOr("href", img.AttrOr("src", ""))
			if strings.HasPrefix(src, "/") {
				src = base + src
			}
			it.Thumbnail = src
		}
		items = append(items, it)
	})
	return items, nil
}

// redlibCount prefers the exact figure in the title attribute over the
// abbreviated visible text.
func redlibCount(s *goquery.Selection) int {
	if s.Length() == 0 {
		return 0
	}
	if title, ok := s.Attr("title"); ok {
		if n := parseCount(title); n > 0 {
			return n
		}
	}
	return parseCount(s.Text())
}
