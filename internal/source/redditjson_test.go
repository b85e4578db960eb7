// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

const hotListing = `{"kind": "Listing", "data": {"children": [
  {"kind": "t3", "data": {"id": "s1", "title": "Announcement", "stickied": true}},
  {"kind": "t3", "data": {"id": "p1", "title": "Hot post", "permalink": "/r/tea/comments/p1/hot_post/",
    "score": 88, "num_comments": 9, "selftext": "", "thumbnail": "https://b.thumbs.redditmedia.com/x.jpg"}}
]}}`

const commentThread = `[
  {"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "p1"}}]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {"author": "x", "body": "second", "score": 4}},
    {"kind": "t1", "data": {"author": "y", "body": "first", "score": 40}},
    {"kind": "t1", "data": {"author": "AutoModerator", "body": "bot", "score": 1, "stickied": true}},
    {"kind": "more", "data": {"count": 12}}
  ]}}
]`

func TestRedditJSONFallsBackAcrossBases(t *testing.T) {
	var blockedHits atomic.Int32
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		blockedHits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()
	open := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/tea/hot.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("raw_json"))
		assert.Equal(t, "8", r.URL.Query().Get("limit"))
		w.Write([]byte(hotListing))
	}))
	defer open.Close()

	r, err := NewRedditJSON([]string{blocked.URL, open.URL}, Options{})
	require.NoError(t, err)

	items := r.Fetch(context.Background(), "tea", 8)
	require.Len(t, items, 1)
	assert.Equal(t, "reddit_p1", items[0].ID)
	assert.Equal(t, "Reddit r/tea", items[0].Source)
	assert.Equal(t, 88, items[0].Score)
	assert.Equal(t, 9, items[0].CommentCount)
	assert.Equal(t, "https://b.thumbs.redditmedia.com/x.jpg", items[0].Thumbnail)
	assert.Equal(t, int32(1), blockedHits.Load())
}

func TestRedditJSONAllBasesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r, err := NewRedditJSON([]string{srv.URL, srv.URL}, Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Fetch(context.Background(), "tea", 8))
}

func TestRedditJSONComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/tea/comments/p1/hot_post.json", r.URL.Path)
		assert.Equal(t, "top", r.URL.Query().Get("sort"))
		w.Write([]byte(commentThread))
	}))
	defer srv.Close()

	r, err := NewRedditJSON([]string{srv.URL}, Options{})
	require.NoError(t, err)

	got := r.Comments(context.Background(), types.Item{ID: "reddit_p1", Permalink: "/r/tea/comments/p1/hot_post/"})
	assert.Equal(t, []types.Comment{
		{Author: "y", Body: "first", Score: 40},
		{Author: "x", Body: "second", Score: 4},
	}, got)
}

func TestNewRedditJSONValidates(t *testing.T) {
	_, err := NewRedditJSON(nil, Options{})
	assert.Error(t, err)
}
