package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendcrawl/internal/archive"
	"github.com/pdiddy/trendcrawl/internal/digest"
	"github.com/pdiddy/trendcrawl/internal/store"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the run state, store contents, and recent history",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Int("history", 5, "number of recent cycles and digests to show")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("history")

	state, err := store.LoadState(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("loading run state: %w", err)
	}
	st, err := store.Load(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("loading store: %w", err)
	}
	writeStatus(os.Stdout, cfg, state, st, time.Now())

	a := openArchive(cfg)
	if a == nil || n <= 0 {
		return nil
	}
	defer a.Close()
	return writeHistory(cmd.Context(), os.Stdout, a, n)
}

func writeStatus(w io.Writer, cfg types.Config, state types.RunState, st *store.Store, now time.Time) {
	fmt.Fprintf(w, "Cycles run:      %s\n", humanize.Comma(int64(state.RunCount)))
	fmt.Fprintf(w, "Last cycle:      %s\n", ago(state.LastRunAt, now))
	fmt.Fprintf(w, "Last heavy run:  %s\n", ago(state.LastHeavyRun, now))
	if !cfg.Crawl.Reddit.Enabled {
		fmt.Fprintln(w, "Heavy category:  disabled")
	} else if until := state.CyclesUntilHeavy(cfg.Crawl.Reddit.EveryN); until == 0 {
		fmt.Fprintln(w, "Heavy category:  next cycle")
	} else {
		fmt.Fprintf(w, "Heavy category:  in %d cycles\n", until)
	}

	counts := digest.GroupCounts(st.Records())
	fmt.Fprintf(w, "Store:           %s posts (hn %d, reddit %d, rss %d), last crawl %s\n",
		humanize.Comma(int64(st.Len())), counts[digest.GroupHN], counts[digest.GroupReddit],
		counts[digest.GroupRSS], ago(st.LastCrawl, now))
}

func writeHistory(ctx context.Context, w io.Writer, a *archive.Archive, n int) error {
	cycles, err := a.RecentCycles(ctx, n)
	if err != nil {
		return err
	}
	if len(cycles) > 0 {
		fmt.Fprintln(w, "\nRecent cycles:")
	}
	for _, c := range cycles {
		heavy := ""
		if c.Heavy {
			heavy = " heavy"
		}
		line := fmt.Sprintf("  #%d%s  %s  %s items, store %s",
			c.RunCount, heavy, humanize.Time(c.StartedAt), humanize.Comma(int64(c.Items)), humanize.Comma(int64(c.StoreAfter)))
		if c.Error != "" {
			line = fmt.Sprintf("  %s  failed: %s", humanize.Time(c.StartedAt), c.Error)
		}
		fmt.Fprintln(w, line)
	}

	digests, err := a.RecentDigests(ctx, n)
	if err != nil {
		return err
	}
	if len(digests) > 0 {
		fmt.Fprintln(w, "\nRecent digests:")
	}
	for _, d := range digests {
		fmt.Fprintf(w, "  %s  %d entries from %d posts via %s\n",
			humanize.Time(d.CreatedAt), len(d.Entries), d.Posts, d.Channel)
	}
	return nil
}

func ago(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}
