// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store holds the Accumulation Store: every item observed since
// the last drain, keyed by id, with observations merged idempotently.
package store

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// ErrCorrupt is returned by Load and LoadState when a file exists but does
// not decode. Callers must not merge into or overwrite such a file.
var ErrCorrupt = errors.New("corrupt store file")

// commentKeyRunes is the length of the normalized body prefix used to
// recognise the same comment across fetches.
const commentKeyRunes = 50

// Store maps item ids to merged records.
type Store struct {
	Posts     map[string]types.Record `json:"posts"`
	LastCrawl *time.Time              `json:"last_crawl"`
}

// MergeStats counts what a Merge did.
type MergeStats struct {
	Added   int
	Updated int
}

// New returns an empty store.
func New() *Store {
	return &Store{Posts: map[string]types.Record{}}
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.Posts) }

// Records returns all records ordered by id.
func (s *Store) Records() []types.Record {
	out := make([]types.Record, 0, len(s.Posts))
	for _, r := range s.Posts {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Merge folds one cycle's items into the store. A new id is inserted with
// seen count 1. An existing record keeps the larger score and comment
// count, gains one observation, keeps non-empty fields it already has,
// and unions its comments with the incoming ones. Several items with the
// same id in one call are a single observation. Items without an id are
// ignored.
func (s *Store) Merge(items []types.Item, now time.Time) MergeStats {
	if s.Posts == nil {
		s.Posts = map[string]types.Record{}
	}
	now = now.UTC()

	var order []string
	batch := map[string]types.Item{}
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if prev, ok := batch[it.ID]; ok {
			batch[it.ID] = mergeItem(prev, it)
			continue
		}
		order = append(order, it.ID)
		batch[it.ID] = it
	}

	var st MergeStats
	for _, id := range order {
		it := batch[id]
		rec, ok := s.Posts[id]
		if !ok {
			it.TopComments = mergeComments(nil, it.TopComments)
			s.Posts[id] = types.Record{Item: it, SeenCount: 1, FirstSeenAt: now}
			st.Added++
			continue
		}
		rec.Item = mergeItem(rec.Item, it)
		rec.SeenCount++
		s.Posts[id] = rec
		st.Updated++
	}
	s.LastCrawl = &now
	return st
}

// Reset empties the store after a successful drain.
func (s *Store) Reset() {
	s.Posts = map[string]types.Record{}
	s.LastCrawl = nil
}

// mergeItem combines two observations of the same item.
func mergeItem(dst, src types.Item) types.Item {
	dst.Score = max(dst.Score, src.Score)
	dst.CommentCount = max(dst.CommentCount, src.CommentCount)
	fill(&dst.Source, src.Source)
	fill(&dst.Title, src.Title)
	fill(&dst.URL, src.URL)
	fill(&dst.Permalink, src.Permalink)
	fill(&dst.Hint, src.Hint)
	fill(&dst.Thumbnail, src.Thumbnail)
	dst.TopComments = mergeComments(dst.TopComments, src.TopComments)
	return dst
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// mergeComments unions two comment lists, keeping the higher-scored copy
// of a repeated comment, and returns the top ranked ones.
func mergeComments(have, incoming []types.Comment) []types.Comment {
	if len(have) == 0 && len(incoming) == 0 {
		return []types.Comment{}
	}
	var out []types.Comment
	index := map[string]int{}
	for _, c := range append(append([]types.Comment(nil), have...), incoming...) {
		k := commentKey(c)
		if i, ok := index[k]; ok {
			if c.Score > out[i].Score {
				out[i].Score = c.Score
			}
			continue
		}
		index[k] = len(out)
		out = append(out, c)
	}
	return types.RankComments(out)
}

// commentKey identifies a comment by author and the start of its body,
// lower-cased with whitespace collapsed.
func commentKey(c types.Comment) string {
	body := strings.ToLower(strings.Join(strings.Fields(c.Body), " "))
	if r := []rune(body); len(r) > commentKeyRunes {
		body = string(r[:commentKeyRunes])
	}
	return c.Author + "\x00" + body
}
