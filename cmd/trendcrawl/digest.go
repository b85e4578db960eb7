package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/trendcrawl/internal/archive"
	"github.com/pdiddy/trendcrawl/internal/digest"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarize the accumulated posts, deliver them, and empty the store",
	Long: `Digest ranks the accumulated posts by trend score with a per-source cap,
has Gemini classify and summarize them, and delivers the result to the
configured channel. The store is emptied only after delivery succeeded; any
earlier failure leaves it intact for the next attempt.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().String("channel", "", "delivery channel: discord or telegram (default from config)")

	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ch, _ := cmd.Flags().GetString("channel"); ch != "" {
		cfg.Digest.Channel = ch
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	a := openArchive(cfg)
	if a != nil {
		defer a.Close()
	}
	d, err := newDrainer(cfg, os.Stderr, a)
	if err != nil {
		return err
	}

	res, err := d.Drain(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Delivered %s entries from %s of %s posts to %s\n",
		humanize.Comma(int64(res.Entries)), humanize.Comma(int64(res.Selected)),
		humanize.Comma(int64(res.Stored)), res.Channel)
	return nil
}

// newDrainer wires the summarizer, the configured delivery channel, and
// the archive, which may be nil.
func newDrainer(cfg types.Config, w io.Writer, a *archive.Archive) (*digest.Drainer, error) {
	sum, err := digest.NewGemini(cfg.Digest, w)
	if err != nil {
		return nil, err
	}
	del, err := newDeliverer(cfg, w)
	if err != nil {
		return nil, err
	}

	d := &digest.Drainer{
		StorePath:   cfg.StorePath(),
		MaxPerGroup: cfg.Digest.MaxPerGroup,
		Summarizer:  sum,
		Deliverer:   del,
		Log:         w,
		Now:         time.Now,
	}
	if a != nil {
		d.Archive = a
	}
	return d, nil
}

func newDeliverer(cfg types.Config, w io.Writer) (digest.Deliverer, error) {
	loc, err := scheduleLocation(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Digest.Channel {
	case types.ChannelDiscord:
		if cfg.Digest.DiscordWebhook == "" {
			return nil, fmt.Errorf("discord webhook is not configured")
		}
		return digest.NewDiscord(cfg.Digest.DiscordWebhook, cfg.Digest.SendDelay, loc, w)
	case types.ChannelTelegram:
		if cfg.Digest.TelegramToken == "" {
			return nil, fmt.Errorf("telegram bot token is not configured")
		}
		return digest.NewTelegram(cfg.Digest.TelegramToken, cfg.Digest.TelegramChatID, cfg.Digest.SendDelay, loc, w)
	default:
		return nil, fmt.Errorf("unknown delivery channel %q", cfg.Digest.Channel)
	}
}

// scheduleLocation is the timezone digests are dated in.
func scheduleLocation(cfg types.Config) (*time.Location, error) {
	if cfg.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}
