// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/trendcrawl/internal/httputil"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// headerColor is the Discord brand color used for the edition header.
const headerColor = 0x5865F2

// discordJumpBase prefixes message links in the table of contents.
var discordJumpBase = "https://discord.com/channels"

// Discord posts an edition to a channel webhook. Discord shows the newest
// message at the bottom, so the edition is posted back to front: the last
// category first and the header last, leaving the header directly above
// the reader's view and the entries in reading order beneath it when
// scrolled up. The header's table of contents links to the first entry of
// every category.
type Discord struct {
	Webhook  string
	Client   *http.Client
	Delay    time.Duration
	Location *time.Location
	Log      io.Writer
}

// NewDiscord returns a Discord deliverer for the webhook URL.
func NewDiscord(webhook string, delay time.Duration, loc *time.Location, w io.Writer) (*Discord, error) {
	u, err := url.Parse(webhook)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid Discord webhook URL")
	}
	return &Discord{
		Webhook:  webhook,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Delay:    delay,
		Location: loc,
		Log:      w,
	}, nil
}

// Name returns the channel name.
func (d *Discord) Name() string { return types.ChannelDiscord }

type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
	Image       *discordImage `json:"image,omitempty"`
	Thumbnail   *discordImage `json:"thumbnail,omitempty"`
}

type discordImage struct {
	URL string `json:"url"`
}

// Deliver posts the edition. The first failed post aborts delivery.
func (d *Discord) Deliver(ctx context.Context, date time.Time, entries []types.DigestEntry) error {
	w := d.Log
	if w == nil {
		w = io.Discard
	}
	secs := layout(entries)

	guild, channel, err := d.webhookInfo(ctx)
	if err != nil {
		fmt.Fprintf(w, "  warning: webhook lookup failed, jump links disabled: %v\n", err)
	}

	firstIDs := map[string]string{}
	for i := len(secs) - 1; i >= 0; i-- {
		sec := secs[i]
		for j := len(sec.Entries) - 1; j >= 0; j-- {
			e := sec.Entries[j]
			id, err := d.post(ctx, discordMessage{Embeds: []discordEmbed{entryEmbed(sec.Category, e)}})
			if err != nil {
				return fmt.Errorf("posting #%d: %w", e.Num, err)
			}
			firstIDs[sec.Name] = id

			if lines := commentLines(e.BestComments); lines != "" {
				if _, err := d.post(ctx, discordMessage{Content: lines}); err != nil {
					return fmt.Errorf("posting comments of #%d: %w", e.Num, err)
				}
			}
		}

		divider := fmt.Sprintf("─── %s **%s** %s ───", sec.Emoji, sec.Name, sec.rangeLabel())
		if _, err := d.post(ctx, discordMessage{Content: divider}); err != nil {
			return fmt.Errorf("posting %s divider: %w", sec.Name, err)
		}
	}

	header := d.header(date, entries, secs, func(s section) string {
		if guild == "" || channel == "" || firstIDs[s.Name] == "" {
			return ""
		}
		return fmt.Sprintf("%s/%s/%s/%s", discordJumpBase, guild, channel, firstIDs[s.Name])
	})
	if _, err := d.post(ctx, discordMessage{Embeds: []discordEmbed{header}}); err != nil {
		return fmt.Errorf("posting header: %w", err)
	}
	fmt.Fprintf(w, "delivered %d entries to Discord\n", len(entries))
	return nil
}

func entryEmbed(c Category, e numbered) discordEmbed {
	desc := fmt.Sprintf("||%s||\n\n🔗 [Read more](%s)  •  📡 %s", e.Detail, e.URL, e.Source)
	em := discordEmbed{
		Title:       fmt.Sprintf("%s #%d  %s", c.Emoji, e.Num, e.Headline),
		Description: desc,
		Color:       c.Color,
	}
	if strings.HasPrefix(e.Thumbnail, "http") {
		if isImage(e.Thumbnail) {
			em.Image = &discordImage{URL: e.Thumbnail}
		} else {
			em.Thumbnail = &discordImage{URL: e.Thumbnail}
		}
	}
	return em
}

func commentLines(comments []string) string {
	var lines []string
	for _, c := range comments {
		if c = strings.TrimSpace(c); c != "" {
			lines = append(lines, "💬 "+c)
		}
	}
	return strings.Join(lines, "\n")
}

func (d *Discord) header(date time.Time, entries []types.DigestEntry, secs []section, jump func(section) string) discordEmbed {
	if d.Location != nil {
		date = date.In(d.Location)
	}
	var toc []string
	for _, s := range secs {
		label := fmt.Sprintf("%s: **#%d~#%d** (%d)", s.Name, s.First, s.Last, len(s.Entries))
		if link := jump(s); link != "" {
			toc = append(toc, fmt.Sprintf("%s [%s](%s)", s.Emoji, label, link))
		} else {
			toc = append(toc, fmt.Sprintf("%s %s", s.Emoji, label))
		}
	}
	desc := fmt.Sprintf("**%d** stories trending abroad today.\n📡 %s\n\n%s\n\n↑ Click a category to jump to it.",
		len(entries), sourceStats(entries), strings.Join(toc, "\n"))
	return discordEmbed{
		Title:       fmt.Sprintf("📰 Today's trends  |  %s", date.Format("2006.01.02 (Mon)")),
		Description: desc,
		Color:       headerColor,
	}
}

// webhookInfo returns the guild and channel the webhook posts to.
func (d *Discord) webhookInfo(ctx context.Context) (guild, channel string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Webhook, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var info struct {
		GuildID   string `json:"guild_id"`
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", fmt.Errorf("decoding webhook: %w", err)
	}
	return info.GuildID, info.ChannelID, nil
}

// post sends one message, waits the send delay, and returns the id of the
// created message.
func (d *Discord) post(ctx context.Context, m discordMessage) (string, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling message: %w", err)
	}
	u, err := url.Parse(d.Webhook)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("wait", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, d.client(), req, 0)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var created struct {
		ID string `json:"id"`
	}
	// A webhook without wait support answers 204; the id is then unknown.
	_ = json.NewDecoder(resp.Body).Decode(&created)

	if err := wait(ctx, d.Delay); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (d *Discord) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}
