// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// maxTelegramRunes is the Bot API limit for one text message.
const maxTelegramRunes = 4096

// Plain-text bounds applied before escaping.
const (
	maxHeadlineRunes = 256
	maxStatsRunes    = 1000
)

// BotSender sends messages through the Telegram Bot API. *tgbotapi.BotAPI
// implements it.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts an edition to a chat as HTML messages: the header with
// the table of contents first, then every category in reading order.
type Telegram struct {
	Bot      BotSender
	ChatID   int64
	Delay    time.Duration
	Location *time.Location
	Log      io.Writer
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64, delay time.Duration, loc *time.Location, w io.Writer) (*Telegram, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not configured")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram: %w", err)
	}
	return &Telegram{Bot: bot, ChatID: chatID, Delay: delay, Location: loc, Log: w}, nil
}

// Name returns the channel name.
func (t *Telegram) Name() string { return types.ChannelTelegram }

// Deliver sends the edition. The first failed message aborts delivery.
func (t *Telegram) Deliver(ctx context.Context, date time.Time, entries []types.DigestEntry) error {
	secs := layout(entries)
	if err := t.send(ctx, t.header(date, entries, secs)); err != nil {
		return fmt.Errorf("sending header: %w", err)
	}
	for _, sec := range secs {
		divider := fmt.Sprintf("─── %s <b>%s</b> %s ───", sec.Emoji, html.EscapeString(sec.Name), sec.rangeLabel())
		if err := t.send(ctx, divider); err != nil {
			return fmt.Errorf("sending %s divider: %w", sec.Name, err)
		}
		for _, e := range sec.Entries {
			if err := t.send(ctx, telegramEntry(sec.Category, e)); err != nil {
				return fmt.Errorf("sending #%d: %w", e.Num, err)
			}
		}
	}
	if t.Log != nil {
		fmt.Fprintf(t.Log, "delivered %d entries to Telegram\n", len(entries))
	}
	return nil
}

func (t *Telegram) header(date time.Time, entries []types.DigestEntry, secs []section) string {
	if t.Location != nil {
		date = date.In(t.Location)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>Today's trends  |  %s</b>\n", date.Format("2006.01.02 (Mon)"))
	fmt.Fprintf(&b, "<b>%d</b> stories trending abroad today.\n", len(entries))
	fmt.Fprintf(&b, "📡 %s\n\n", html.EscapeString(truncate(sourceStats(entries), maxStatsRunes)))
	for _, s := range secs {
		fmt.Fprintf(&b, "%s %s: <b>#%d~#%d</b> (%d)\n", s.Emoji, html.EscapeString(s.Name), s.First, s.Last, len(s.Entries))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// telegramEntry renders one entry within the message limit. The detail
// is shortened and trailing comments dropped as plain text, so markup and
// entities are never cut.
func telegramEntry(c Category, e numbered) string {
	const spoilerOpen, spoilerClose = "<tg-spoiler>", "</tg-spoiler>\n"
	head := fmt.Sprintf("%s <b>#%d  %s</b>\n", c.Emoji, e.Num, html.EscapeString(truncate(e.Headline, maxHeadlineRunes)))
	link := fmt.Sprintf("\n\n🔗 <a href=\"%s\">Read more</a>  •  📡 %s",
		html.EscapeString(e.URL), html.EscapeString(truncate(e.Source, maxHeadlineRunes)))

	budget := maxTelegramRunes - utf8.RuneCountInString(head+spoilerOpen+spoilerClose+link)
	detail := escapeWithin(e.Detail, budget)
	budget -= utf8.RuneCountInString(detail)

	var b strings.Builder
	b.WriteString(head)
	b.WriteString(spoilerOpen + detail + spoilerClose)
	for _, cm := range e.BestComments {
		if cm = strings.TrimSpace(cm); cm == "" {
			continue
		}
		line := "\n💬 " + html.EscapeString(cm)
		n := utf8.RuneCountInString(line)
		if n > budget {
			break
		}
		budget -= n
		b.WriteString(line)
	}
	b.WriteString(link)
	return b.String()
}

// escapeWithin escapes the longest prefix of s whose escaped form fits in
// n runes.
func escapeWithin(s string, n int) string {
	var b strings.Builder
	used := 0
	for _, r := range s {
		esc := html.EscapeString(string(r))
		k := utf8.RuneCountInString(esc)
		if used+k > n {
			break
		}
		b.WriteString(esc)
		used += k
	}
	return b.String()
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.Bot.Send(msg); err != nil {
		return err
	}
	return wait(ctx, t.Delay)
}
