// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/trendcrawl/internal/acquire"
)

// WriteSummary prints the per-cycle report: one line per category, the
// probe outcome of every strategy tried, and the store growth.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nCycle %d summary (heavy: %s, took %s)\n",
		s.RunCount, yesNo(s.Heavy), s.FinishedAt.Sub(s.StartedAt).Round(time.Second))

	for _, r := range s.Reports {
		switch {
		case r.Skipped:
			fmt.Fprintf(w, "  %-11s skipped: %s\n", r.Category, probes(r))
			continue
		case r.Exhausted:
			fmt.Fprintf(w, "  %-11s %-12s %d/%d targets, %s items (exhausted)\n",
				r.Category, r.Active, r.TargetsOK, r.TargetsTotal, humanize.Comma(int64(r.Items)))
		default:
			fmt.Fprintf(w, "  %-11s %-12s %d/%d targets, %s items\n",
				r.Category, r.Active, r.TargetsOK, r.TargetsTotal, humanize.Comma(int64(r.Items)))
		}
		if len(r.Attempts) > 1 {
			fmt.Fprintf(w, "  %-11s probes: %s\n", "", probes(r))
		}
		if r.Switches > 0 {
			fmt.Fprintf(w, "  %-11s endpoint switches: %d\n", "", r.Switches)
		}
		if r.CommentTier != "" {
			fmt.Fprintf(w, "  %-11s comments: %d items via %s\n", "", r.Enriched, r.CommentTier)
		}
	}

	fmt.Fprintf(w, "Store: %s -> %s records (%d new, %d updated)\n",
		humanize.Comma(int64(s.StoreBefore)), humanize.Comma(int64(s.StoreAfter)), s.Added, s.Updated)
	if s.NextHeavyIn == 0 {
		fmt.Fprintln(w, "Next cycle includes the heavy category")
	} else {
		fmt.Fprintf(w, "Heavy category after %d more cycles\n", s.NextHeavyIn)
	}
}

func probes(r acquire.Report) string {
	parts := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		status := "failed"
		if a.OK {
			status = "ok"
		}
		parts = append(parts, a.Strategy+" "+status)
	}
	if len(parts) == 0 {
		return "no strategy configured"
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
