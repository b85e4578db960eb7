package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trendcrawl/internal/digest"
	"github.com/pdiddy/trendcrawl/internal/store"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the ranked selection the next digest would receive",
	Long: `Rank applies the digest selection to the current store without draining it:
posts are scored as score + 2*comments + 50*seen_count, capped per source
group (hn, reddit, rss), and sorted by score. Use --format json or yaml to
export the selection.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	rankCmd.Flags().Int("limit", 0, "print at most this many posts (0 prints all)")

	rootCmd.AddCommand(rankCmd)
}

// rankedPost is one row of the rank export.
type rankedPost struct {
	Rank   int          `json:"rank" yaml:"rank"`
	Trend  int          `json:"trend_score" yaml:"trend_score"`
	Group  string       `json:"group" yaml:"group"`
	Record types.Record `json:"post" yaml:"post"`
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := store.Load(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("loading store: %w", err)
	}
	selected := digest.Select(st.Records(), cfg.Digest.MaxPerGroup)
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	posts := make([]rankedPost, len(selected))
	for i, r := range selected {
		posts[i] = rankedPost{Rank: i + 1, Trend: r.TrendScore(), Group: digest.Group(r.Source), Record: r}
	}
	return writeRanked(os.Stdout, format, posts, st.Len())
}

func writeRanked(w io.Writer, format string, posts []rankedPost, stored int) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	case "yaml":
		return yaml.NewEncoder(w).Encode(posts)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tTREND\tSCORE\tCOMMENTS\tSEEN\tSOURCE\tTITLE")
		for _, p := range posts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
				p.Rank, humanize.Comma(int64(p.Trend)), humanize.Comma(int64(p.Record.Score)),
				humanize.Comma(int64(p.Record.CommentCount)), p.Record.SeenCount, p.Record.Source,
				clip(p.Record.Title, 70))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%d of %s stored posts selected\n", len(posts), humanize.Comma(int64(stored)))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
