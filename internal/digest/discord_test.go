// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// webhook is a fake Discord webhook that numbers created messages m1, m2…
type webhook struct {
	mu       sync.Mutex
	info     bool
	failAt   int
	messages []discordMessage
}

func (h *webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Method == http.MethodGet {
		if !h.info {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id": "wh", "guild_id": "g1", "channel_id": "c1"}`)
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var m discordMessage
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.messages = append(h.messages, m)
	if len(h.messages) == h.failAt {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	fmt.Fprintf(w, `{"id": "m%d"}`, len(h.messages))
}

func editionEntries() []types.DigestEntry {
	return []types.DigestEntry{
		{Category: "Tech/AI", Headline: "H1", Detail: "D1", URL: "https://a.example/1", Source: "Hacker News", Thumbnail: "https://i.redd.it/x.jpg?width=640"},
		{Category: "Misc", Headline: "H4", Detail: "D4", URL: "https://d.example/4", Source: "BBC World"},
		{Category: "Humor", Headline: "H3", Detail: "D3", URL: "https://c.example/3", Source: "Reddit r/tifu", BestComments: []string{"alice: lol", " "}},
		{Category: "Tech/AI", Headline: "H2", Detail: "D2", URL: "https://b.example/2", Source: "Reddit r/tea", Thumbnail: "https://example.com/thumb"},
	}
}

var editionDate = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func newTestDiscord(t *testing.T, h *webhook) (*Discord, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	var log bytes.Buffer
	d, err := NewDiscord(ts.URL+"/api/webhooks/1/tok", 0, time.UTC, &log)
	require.NoError(t, err)
	d.Client = ts.Client()
	return d, &log
}

func TestDiscordDeliver(t *testing.T) {
	h := &webhook{info: true}
	d, _ := newTestDiscord(t, h)

	require.NoError(t, d.Deliver(context.Background(), editionDate, editionEntries()))

	msgs := h.messages
	require.Len(t, msgs, 9)

	// Back to front: Misc, Humor, Tech/AI, then the header.
	assert.Equal(t, "📌 #4  H4", msgs[0].Embeds[0].Title)
	assert.Equal(t, defaultColor, msgs[0].Embeds[0].Color)
	assert.Equal(t, "─── 📌 **Misc** #4~#4 (1) ───", msgs[1].Content)
	assert.Equal(t, "😂 #3  H3", msgs[2].Embeds[0].Title)
	assert.Equal(t, "💬 alice: lol", msgs[3].Content)
	assert.Equal(t, "─── 😂 **Humor** #3~#3 (1) ───", msgs[4].Content)
	assert.Equal(t, "🤖 #2  H2", msgs[5].Embeds[0].Title)
	assert.Equal(t, "🤖 #1  H1", msgs[6].Embeds[0].Title)
	assert.Equal(t, "─── 🤖 **Tech/AI** #1~#2 (2) ───", msgs[7].Content)

	first := msgs[6].Embeds[0]
	assert.Equal(t, 0x00D4AA, first.Color)
	assert.Equal(t, "||D1||\n\n🔗 [Read more](https://a.example/1)  •  📡 Hacker News", first.Description)
	require.NotNil(t, first.Image)
	assert.Equal(t, "https://i.redd.it/x.jpg?width=640", first.Image.URL)
	assert.Nil(t, first.Thumbnail)

	second := msgs[5].Embeds[0]
	assert.Nil(t, second.Image)
	require.NotNil(t, second.Thumbnail)
	assert.Equal(t, "https://example.com/thumb", second.Thumbnail.URL)

	header := msgs[8].Embeds[0]
	assert.Equal(t, "📰 Today's trends  |  2026.10.15 (Thu)", header.Title)
	assert.Equal(t, headerColor, header.Color)
	assert.Contains(t, header.Description, "**4** stories")
	assert.Contains(t, header.Description, "📡 BBC World 1 / Hacker News 1 / Reddit 2")
	assert.Contains(t, header.Description, "🤖 [Tech/AI: **#1~#2** (2)](https://discord.com/channels/g1/c1/m7)")
	assert.Contains(t, header.Description, "😂 [Humor: **#3~#3** (1)](https://discord.com/channels/g1/c1/m3)")
	assert.Contains(t, header.Description, "📌 [Misc: **#4~#4** (1)](https://discord.com/channels/g1/c1/m1)")
}

func TestDiscordDeliverWithoutWebhookInfo(t *testing.T) {
	h := &webhook{}
	d, log := newTestDiscord(t, h)

	require.NoError(t, d.Deliver(context.Background(), editionDate, editionEntries()[:1]))

	require.Len(t, h.messages, 3)
	header := h.messages[2].Embeds[0]
	assert.Contains(t, header.Description, "🤖 Tech/AI: **#1~#1** (1)")
	assert.NotContains(t, header.Description, "discord.com/channels")
	assert.Contains(t, log.String(), "jump links disabled")
}

func TestDiscordDeliverStopsOnFailure(t *testing.T) {
	h := &webhook{info: true, failAt: 2}
	d, _ := newTestDiscord(t, h)

	err := d.Deliver(context.Background(), editionDate, editionEntries())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
	assert.Len(t, h.messages, 2)
}

func TestNewDiscordRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://discord.com/api/webhooks/1/x"} {
		_, err := NewDiscord(raw, 0, nil, nil)
		assert.Error(t, err, raw)
	}
}

func TestIsImage(t *testing.T) {
	assert.True(t, isImage("https://i.redd.it/a.PNG"))
	assert.True(t, isImage("https://x.example/a.webp?s=1"))
	assert.False(t, isImage("https://x.example/page"))
	assert.False(t, isImage("https://x.example/a.jpg.html"))
}
