package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trendcrawl/internal/store"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

func samplePosts() []rankedPost {
	r := types.Record{
		Item:      types.Item{ID: "hn_1", Source: "Hacker News", Title: "A very long title about something", Score: 1200, CommentCount: 300},
		SeenCount: 2,
	}
	return []rankedPost{{Rank: 1, Trend: r.TrendScore(), Group: "hn", Record: r}}
}

func TestWriteRanked(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRanked(&buf, "table", samplePosts(), 1500))
		out := buf.String()
		assert.Contains(t, out, "TREND")
		assert.Contains(t, out, "1,900")
		assert.Contains(t, out, "1,200")
		assert.Contains(t, out, "1 of 1,500 stored posts selected")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRanked(&buf, "json", samplePosts(), 1))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.EqualValues(t, 1900, got[0]["trend_score"])
		assert.Equal(t, "hn_1", got[0]["post"].(map[string]any)["id"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRanked(&buf, "yaml", samplePosts(), 1))
		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "hn", got[0]["group"])
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, writeRanked(&bytes.Buffer{}, "csv", nil, 0))
	})
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd…", clip("abcdefgh", 5))
}

func TestWriteStatus(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	last := now.Add(-2 * time.Hour)
	state := types.RunState{RunCount: 10, LastRunAt: &last}

	st := store.New()
	st.Merge([]types.Item{{ID: "hn_1", Source: "Hacker News"}, {ID: "reddit_a", Source: "Reddit r/tea"}}, last)

	var buf bytes.Buffer
	writeStatus(&buf, types.Default(), state, st, now)
	out := buf.String()

	assert.Contains(t, out, "Cycles run:      10")
	assert.Contains(t, out, "Last cycle:      2 hours ago")
	assert.Contains(t, out, "Last heavy run:  never")
	assert.Contains(t, out, "Heavy category:  in 6 cycles")
	assert.Contains(t, out, "2 posts (hn 1, reddit 1, rss 0), last crawl 2 hours ago")
}
