// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// fetchFeed downloads and parses an RSS or Atom document.
func fetchFeed(ctx context.Context, o Options, parser *gofeed.Parser, url string) (*gofeed.Feed, error) {
	body, err := httpGet(ctx, o, url, o.header("application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"))
	if err != nil {
		return nil, err
	}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return feed, nil
}

// mediaThumbnail returns the url of the first media:thumbnail, looking
// inside media:group too.
func mediaThumbnail(item *gofeed.Item) string {
	media := item.Extensions["media"]
	if media == nil {
		return ""
	}
	if u := firstAttr(media["thumbnail"], "url"); u != "" {
		return u
	}
	for _, g := range media["group"] {
		if u := firstAttr(g.Children["thumbnail"], "url"); u != "" {
			return u
		}
	}
	return ""
}

// mediaImage returns the first media:content that is an image.
func mediaImage(item *gofeed.Item) string {
	media := item.Extensions["media"]
	if media == nil {
		return ""
	}
	contents := media["content"]
	for _, g := range media["group"] {
		contents = append(contents, g.Children["content"]...)
	}
	for _, c := range contents {
		if c.Attrs["medium"] == "image" || strings.HasPrefix(c.Attrs["type"], "image") {
			if u := c.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}

// enclosureImage returns the first image enclosure.
func enclosureImage(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func firstAttr(exts []ext.Extension, attr string) string {
	for _, e := range exts {
		if v := e.Attrs[attr]; v != "" {
			return v
		}
	}
	return ""
}
