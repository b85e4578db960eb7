package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trendcrawl/internal/crawl"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl cycle and merge the results into the store",
	Long: `Crawl runs every enabled source category once, merges the items into the
accumulation store, and advances the run counter. The Reddit category runs on
the first cycle and every reddit.every_n cycles after that; --force-heavy and
--skip-heavy override that decision for this run only.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Bool("force-heavy", false, "include the heavy category regardless of the duty cycle")
	crawlCmd.Flags().Bool("skip-heavy", false, "exclude the heavy category regardless of the duty cycle")
	crawlCmd.Flags().Bool("json", false, "print the cycle summary as JSON")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force-heavy")
	skip, _ := cmd.Flags().GetBool("skip-heavy")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := crawl.New(cfg, os.Stderr)
	if a := openArchive(cfg); a != nil {
		defer a.Close()
		c.Archive = a
	}

	sum, err := c.Run(ctx, crawl.Options{ForceHeavy: force, SkipHeavy: skip})
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	crawl.WriteSummary(os.Stdout, sum)
	return nil
}
