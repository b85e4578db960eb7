// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// numbered is a digest entry with its position in the edition.
type numbered struct {
	types.DigestEntry
	Num int
}

// section is the run of entries of one category. First and Last are the
// entry numbers it spans.
type section struct {
	Category
	Entries     []numbered
	First, Last int
}

// layout groups entries into sections, known categories in display order
// followed by unknown ones in order of first appearance, and numbers the
// entries from 1 across the whole edition.
func layout(entries []types.DigestEntry) []section {
	byName := map[string][]types.DigestEntry{}
	var extra []string
	for _, e := range entries {
		if _, ok := byName[e.Category]; !ok && !known(e.Category) {
			extra = append(extra, e.Category)
		}
		byName[e.Category] = append(byName[e.Category], e)
	}

	var order []string
	for _, c := range Categories {
		order = append(order, c.Name)
	}
	order = append(order, extra...)

	var out []section
	num := 1
	for _, name := range order {
		es := byName[name]
		if len(es) == 0 {
			continue
		}
		sec := section{Category: lookupCategory(name), First: num}
		for _, e := range es {
			sec.Entries = append(sec.Entries, numbered{DigestEntry: e, Num: num})
			num++
		}
		sec.Last = num - 1
		out = append(out, sec)
	}
	return out
}

func known(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// sourceStats summarizes entry origins as "Hacker News 2 / Reddit 5",
// folding every subreddit into its site.
func sourceStats(entries []types.DigestEntry) string {
	counts := map[string]int{}
	for _, e := range entries {
		name, _, _ := strings.Cut(e.Source, " r/")
		counts[name]++
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s %d", n, counts[n])
	}
	return strings.Join(parts, " / ")
}

// rangeLabel renders a section span such as "#4~#6 (3)".
func (s section) rangeLabel() string {
	return fmt.Sprintf("#%d~#%d (%d)", s.First, s.Last, len(s.Entries))
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// isImage reports whether u points straight at an image file.
func isImage(u string) bool {
	lower := strings.ToLower(u)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
