// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the trendcrawl
// pipeline: normalized items, accumulated records, run state, digest
// entries, and configuration.
package types

import (
	"sort"
	"time"
)

// Maximum sizes for the bounded Item fields.
const (
	MaxHintRunes    = 300
	MaxCommentRunes = 200
	MaxTopComments  = 3
)

// Comment is one sample comment attached to an item.
type Comment struct {
	Author string `json:"author" yaml:"author"`
	Body   string `json:"body" yaml:"body"`
	Score  int    `json:"score" yaml:"score"`
}

// Item is a normalized unit of trending content. Adapters are the only
// code that sees raw upstream shapes; everything downstream sees Items.
type Item struct {
	// ID is namespaced by source kind (reddit_<id>, hn_<id>, rss_<hash>)
	// and identical for every observation of the same content.
	ID string `json:"id" yaml:"id"`

	// Source is a human-readable origin label, e.g. "Reddit r/science".
	Source string `json:"source" yaml:"source"`

	Title     string `json:"title" yaml:"title"`
	URL       string `json:"url" yaml:"url"`
	Permalink string `json:"permalink,omitempty" yaml:"permalink,omitempty"`

	// Score and CommentCount are zero when the source does not report them.
	Score        int `json:"score" yaml:"score"`
	CommentCount int `json:"comments" yaml:"comments"`

	// Hint is an HTML-stripped excerpt of at most MaxHintRunes runes.
	Hint string `json:"hint" yaml:"hint"`

	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`

	// TopComments holds at most MaxTopComments comments, score-descending.
	TopComments []Comment `json:"top_comments" yaml:"top_comments"`
}

// Record is an Item plus its accumulation metadata.
type Record struct {
	Item `yaml:",inline"`

	// SeenCount counts the crawl cycles that observed the item.
	SeenCount int `json:"seen_count" yaml:"seen_count"`

	// FirstSeenAt is set on insert and never changed.
	FirstSeenAt time.Time `json:"first_seen" yaml:"first_seen"`
}

// TrendScore ranks records for the downstream selection. Repeat
// observations weigh heavily so items that stay on front pages across
// many cycles surface over one-off spikes.
func (r Record) TrendScore() int {
	return r.Score + 2*r.CommentCount + 50*r.SeenCount
}

// DigestEntry is one summarized topic returned by the summarizer and
// handed to a delivery channel.
type DigestEntry struct {
	Category     string   `json:"category" yaml:"category"`
	Headline     string   `json:"headline" yaml:"headline"`
	Detail       string   `json:"detail" yaml:"detail"`
	BestComments []string `json:"best_comments" yaml:"best_comments"`
	URL          string   `json:"url" yaml:"url"`
	Source       string   `json:"source" yaml:"source"`
	Thumbnail    string   `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// RankComments orders comments by score, highest first, and keeps at most
// MaxTopComments. Ties keep their input order.
func RankComments(comments []Comment) []Comment {
	out := make([]Comment, len(comments))
	copy(out, comments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxTopComments {
		out = out[:MaxTopComments]
	}
	return out
}
