package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendcrawl/internal/crawl"
	"github.com/pdiddy/trendcrawl/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run crawl cycles and digests on their cron schedules",
	Long: `Serve stays in the foreground and runs a crawl cycle on schedule.crawl and a
digest on schedule.digest, both evaluated in schedule.timezone. Jobs never
overlap. SIGINT or SIGTERM stops the daemon after the running job returns.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("no-digest", false, "only crawl; never drain the store")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	noDigest, _ := cmd.Flags().GetBool("no-digest")

	s, err := scheduler.New(cfg.Schedule.Timezone, os.Stderr)
	if err != nil {
		return err
	}

	a := openArchive(cfg)
	if a != nil {
		defer a.Close()
	}

	err = s.Add("crawl", cfg.Schedule.Crawl, func(ctx context.Context) error {
		c := crawl.New(cfg, os.Stderr)
		if a != nil {
			c.Archive = a
		}
		sum, err := c.Run(ctx, crawl.Options{})
		if err != nil {
			return err
		}
		crawl.WriteSummary(os.Stderr, sum)
		return nil
	})
	if err != nil {
		return err
	}

	if !noDigest {
		d, err := newDrainer(cfg, os.Stderr, a)
		if err != nil {
			return fmt.Errorf("configuring digest (use --no-digest to crawl only): %w", err)
		}
		err = s.Add("digest", cfg.Schedule.Digest, func(ctx context.Context) error {
			_, err := d.Drain(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()
	fmt.Fprintf(os.Stderr, "trendcrawl %s serving in %s\n", version, s.Location())
	return s.Run(ctx)
}
