// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"strings"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// listing is a submission as returned by the PullPush archive and by
// Reddit's own JSON listings.
type listing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Permalink   string `json:"permalink"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Selftext    string `json:"selftext"`
	Thumbnail   string `json:"thumbnail"`
	Stickied    bool   `json:"stickied"`
	Removed     string `json:"removed_by_category"`
	Preview     struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

// item converts a listing into an Item attributed to sub.
func (l listing) item(sub string) types.Item {
	permalink := l.Permalink
	if permalink == "" {
		permalink = "/r/" + sub + "/comments/" + l.ID + "/"
	}
	return types.Item{
		ID:           "reddit_" + l.ID,
		Source:       redditSource(sub),
		Title:        l.Title,
		URL:          "https://reddit.com" + permalink,
		Permalink:    permalink,
		Score:        l.Score,
		CommentCount: l.NumComments,
		Hint:         truncateRunes(l.Selftext, types.MaxHintRunes),
		Thumbnail:    l.image(),
	}
}

// image picks a direct image link, then the preview source, then an
// http thumbnail.
func (l listing) image() string {
	if isImageURL(l.URL) {
		return l.URL
	}
	if len(l.Preview.Images) > 0 && l.Preview.Images[0].Source.URL != "" {
		return l.Preview.Images[0].Source.URL
	}
	if strings.HasPrefix(l.Thumbnail, "http") {
		return l.Thumbnail
	}
	return ""
}

// rawComment is a comment from either API.
type rawComment struct {
	Author   string `json:"author"`
	Body     string `json:"body"`
	Score    int    `json:"score"`
	Stickied bool   `json:"stickied"`
}

// usable drops stickied and deleted comments.
func (c rawComment) usable() bool {
	return c.Body != "" && !c.Stickied && c.Body != "[deleted]" && c.Body != "[removed]"
}

func (c rawComment) comment() types.Comment {
	return types.Comment{
		Author: c.Author,
		Body:   truncateRunes(c.Body, types.MaxCommentRunes),
		Score:  c.Score,
	}
}
