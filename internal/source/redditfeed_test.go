// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atomEntry(sub, id, title string) string {
	return fmt.Sprintf(`<entry>
  <id>t3_%[2]s</id>
  <title>%[3]s</title>
  <link href="https://www.reddit.com/r/%[1]s/comments/%[2]s/slug/"/>
  <content type="html">&lt;table&gt;&lt;tr&gt;&lt;td&gt;&lt;img src="https://i.redd.it/%[2]s.jpg" alt="%[3]s"/&gt;&lt;/td&gt;&lt;td&gt;submitted by u/someone&lt;/td&gt;&lt;/tr&gt;&lt;/table&gt;</content>
  <media:thumbnail url="https://b.thumbs.redditmedia.com/%[2]s.jpg"/>
</entry>`, sub, id, title)
}

func atomFeed(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/">
<title>reddit</title>
` + strings.Join(entries, "\n") + `
</feed>`
}

func TestRedditFeedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/tea/.rss", r.URL.Path)
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomFeed(
			atomEntry("tea", "a1", "Matcha"),
			atomEntry("tea", "a2", "Oolong"),
			atomEntry("tea", "a3", "Sencha"),
		)))
	}))
	defer srv.Close()

	f, err := NewRedditFeed(srv.URL, 6, nil, Options{})
	require.NoError(t, err)

	items := f.Fetch(context.Background(), "tea", 2)
	require.Len(t, items, 2)
	it := items[0]
	assert.Equal(t, "reddit_a1", it.ID)
	assert.Equal(t, "Reddit r/tea", it.Source)
	assert.Equal(t, "Matcha", it.Title)
	assert.Equal(t, "https://www.reddit.com/r/tea/comments/a1/slug/", it.URL)
	assert.Equal(t, "/r/tea/comments/a1/slug/", it.Permalink)
	assert.Equal(t, "https://i.redd.it/a1.jpg", it.Thumbnail)
	assert.Equal(t, "submitted by u/someone", it.Hint)
	assert.Zero(t, it.Score)
	assert.Zero(t, it.CommentCount)
}

func TestRedditFeedFetchAllCombinesChunks(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/r/tea+coffee/hot/.rss":
			w.Write([]byte(atomFeed(
				atomEntry("tea", "t1", "Tea one"),
				atomEntry("coffee", "c1", "Coffee one"),
				atomEntry("tea", "t2", "Tea two"),
				atomEntry("tea", "t3", "Tea three"),
			)))
		case "/r/whiskey/hot/.rss":
			w.Write([]byte(atomFeed(atomEntry("whiskey", "w1", "Peat"))))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewRedditFeed(srv.URL, 2, nil, Options{})
	require.NoError(t, err)

	items, ok := f.FetchAll(context.Background(), []string{"tea", "coffee", "whiskey"}, 2)

	assert.Equal(t, []string{"/r/tea+coffee/hot/.rss", "/r/whiskey/hot/.rss"}, paths)
	assert.Equal(t, 3, ok)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"reddit_t1", "reddit_c1", "reddit_t2", "reddit_w1"}, ids)
	assert.Equal(t, "Reddit r/coffee", items[1].Source)
}

func TestRedditFeedFetchAllFallsBackPerSub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/tea/.rss":
			w.Write([]byte(atomFeed(atomEntry("tea", "t1", "Tea one"))))
		case "/r/coffee/.rss":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	f, err := NewRedditFeed(srv.URL, 6, nil, Options{})
	require.NoError(t, err)

	items, ok := f.FetchAll(context.Background(), []string{"tea", "coffee"}, 5)
	require.Len(t, items, 1)
	assert.Equal(t, "reddit_t1", items[0].ID)
	assert.Equal(t, 1, ok)
}

func TestFeedEntryFallsBackToMediaThumbnail(t *testing.T) {
	entry := `<entry>
  <id>t3_z9</id>
  <title>No inline image</title>
  <link href="https://www.reddit.com/r/DIY/comments/z9/slug/"/>
  <content type="html">&lt;p&gt;text only&lt;/p&gt;</content>
  <media:thumbnail url="https://b.thumbs.redditmedia.com/z9.jpg"/>
</entry>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(atomFeed(entry)))
	}))
	defer srv.Close()

	f, err := NewRedditFeed(srv.URL, 6, nil, Options{})
	require.NoError(t, err)
	items := f.Fetch(context.Background(), "DIY", 5)
	require.Len(t, items, 1)
	assert.Equal(t, "https://b.thumbs.redditmedia.com/z9.jpg", items[0].Thumbnail)
	assert.Equal(t, "text only", items[0].Hint)
}
