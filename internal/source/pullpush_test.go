// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

const pullpushSubmissions = `{"data": [
  {"id": "aaa", "title": "Pinned", "stickied": true, "permalink": "/r/science/comments/aaa/pinned/"},
  {"id": "bbb", "title": "Gone", "removed_by_category": "moderator"},
  {"id": "ccc", "title": "Real post", "permalink": "/r/science/comments/ccc/real_post/",
   "url": "https://i.redd.it/pic.png", "score": 420, "num_comments": 37, "selftext": "some text"},
  {"id": "ddd", "title": "Preview post", "url": "https://example.com/x",
   "preview": {"images": [{"source": {"url": "https://preview.redd.it/p.jpg"}}]},
   "thumbnail": "https://b.thumbs.redditmedia.com/t.jpg"},
  {"id": "eee", "title": "Self post", "url": "https://reddit.com/r/science/comments/eee/", "thumbnail": "self"}
]}`

func TestPullPushFetch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reddit/search/submission/", r.URL.Path)
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(pullpushSubmissions))
	}))
	defer srv.Close()

	p, err := NewPullPush(srv.URL+"/reddit", 48*time.Hour, Options{})
	require.NoError(t, err)
	p.Now = func() time.Time { return now }

	items := p.Fetch(context.Background(), "science", 8)

	assert.Equal(t, "science", query["subreddit"])
	assert.Equal(t, "score", query["sort_type"])
	assert.Equal(t, "desc", query["sort"])
	assert.Equal(t, "8", query["size"])
	assert.Equal(t, "1772193600", query["after"])

	require.Len(t, items, 3)
	assert.Equal(t, types.Item{
		ID:           "reddit_ccc",
		Source:       "Reddit r/science",
		Title:        "Real post",
		URL:          "https://reddit.com/r/science/comments/ccc/real_post/",
		Permalink:    "/r/science/comments/ccc/real_post/",
		Score:        420,
		CommentCount: 37,
		Hint:         "some text",
		Thumbnail:    "https://i.redd.it/pic.png",
	}, items[0])
	assert.Equal(t, "https://preview.redd.it/p.jpg", items[1].Thumbnail)
	assert.Equal(t, "/r/science/comments/ddd/", items[1].Permalink)
	assert.Empty(t, items[2].Thumbnail)
}

func TestPullPushFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	p, err := NewPullPush(srv.URL, time.Hour, Options{})
	require.NoError(t, err)
	assert.Empty(t, p.Fetch(context.Background(), "science", 8))
}

func TestPullPushComments(t *testing.T) {
	long := strings.Repeat("x", 250)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/comment/", r.URL.Path)
		assert.Equal(t, "ccc", r.URL.Query().Get("link_id"))
		assert.Equal(t, "3", r.URL.Query().Get("size"))
		w.Write([]byte(`{"data": [
			{"author": "mod", "body": "Rules", "score": 999, "stickied": true},
			{"author": "a", "body": "[deleted]", "score": 50},
			{"author": "b", "body": "[removed]", "score": 40},
			{"author": "c", "body": "low", "score": 2},
			{"author": "d", "body": "` + long + `", "score": 30}
		]}`))
	}))
	defer srv.Close()

	p, err := NewPullPush(srv.URL, time.Hour, Options{})
	require.NoError(t, err)

	got := p.Comments(context.Background(), types.Item{ID: "reddit_ccc"})
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Author)
	assert.Len(t, got[0].Body, types.MaxCommentRunes)
	assert.Equal(t, "c", got[1].Author)
}

func TestPullPushCommentsIgnoresForeignItems(t *testing.T) {
	p, err := NewPullPush("https://api.example.com", time.Hour, Options{})
	require.NoError(t, err)
	assert.Nil(t, p.Comments(context.Background(), types.Item{ID: "hn_1"}))
}
