// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"sort"
	"strings"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Source groups balanced by Select.
const (
	GroupHN     = "hn"
	GroupReddit = "reddit"
	GroupRSS    = "rss"
)

// Group maps a record's source label to its selection group.
func Group(source string) string {
	switch {
	case source == "Hacker News":
		return GroupHN
	case strings.HasPrefix(source, "Reddit"):
		return GroupReddit
	default:
		return GroupRSS
	}
}

// Select ranks records by trend score within each source group, keeps at
// most maxPerGroup of each, and returns the union sorted by trend score,
// highest first. A maxPerGroup of 0 or less keeps every record. Equal
// scores fall back to id order so the selection is deterministic.
func Select(records []types.Record, maxPerGroup int) []types.Record {
	groups := map[string][]types.Record{}
	for _, r := range records {
		g := Group(r.Source)
		groups[g] = append(groups[g], r)
	}

	var out []types.Record
	for _, g := range []string{GroupHN, GroupReddit, GroupRSS} {
		rs := groups[g]
		sortByTrend(rs)
		if maxPerGroup > 0 && len(rs) > maxPerGroup {
			rs = rs[:maxPerGroup]
		}
		out = append(out, rs...)
	}
	sortByTrend(out)
	return out
}

// GroupCounts counts records per selection group.
func GroupCounts(records []types.Record) map[string]int {
	counts := map[string]int{}
	for _, r := range records {
		counts[Group(r.Source)]++
	}
	return counts
}

func sortByTrend(rs []types.Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		si, sj := rs[i].TrendScore(), rs[j].TrendScore()
		if si != sj {
			return si > sj
		}
		return rs[i].ID < rs[j].ID
	})
}
