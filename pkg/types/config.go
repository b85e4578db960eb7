// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds every individual request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with API and feed requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// PacingConfig holds the three independent delay classes applied between
// sequential operations.
type PacingConfig struct {
	// TargetDelay separates successive targets of the same endpoint.
	TargetDelay time.Duration `json:"target_delay" yaml:"target_delay" mapstructure:"target_delay"`

	// EndpointDelay separates probes of different endpoints.
	EndpointDelay time.Duration `json:"endpoint_delay" yaml:"endpoint_delay" mapstructure:"endpoint_delay"`

	// BatchDelay separates enrichment calls.
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay" mapstructure:"batch_delay"`
}

// MirrorConfig configures the multi-instance HTML mirror strategy.
type MirrorConfig struct {
	// Instances lists interchangeable mirror base URLs in priority order.
	Instances []string `json:"instances" yaml:"instances" mapstructure:"instances"`

	// MinBodySize is the smallest response accepted as real content.
	// Blocked instances answer 200 with a near-empty page.
	MinBodySize int `json:"min_body_size" yaml:"min_body_size" mapstructure:"min_body_size"`

	// FailThreshold is the number of consecutive failed targets that
	// trigger an instance switch.
	FailThreshold int `json:"fail_threshold" yaml:"fail_threshold" mapstructure:"fail_threshold"`

	// Timeout bounds a single mirror request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is a browser-like agent; mirrors reject bot agents.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RedditConfig configures the heavy Reddit category and its strategy chain.
type RedditConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Subreddits []string `json:"subreddits" yaml:"subreddits" mapstructure:"subreddits"`

	// LimitPerTarget caps the items kept per subreddit.
	LimitPerTarget int `json:"limit_per_target" yaml:"limit_per_target" mapstructure:"limit_per_target"`

	// EveryN runs the category on every N-th cycle.
	EveryN int `json:"every_n" yaml:"every_n" mapstructure:"every_n"`

	// ProbeTarget is an always-populated subreddit used to test strategies.
	ProbeTarget string `json:"probe_target" yaml:"probe_target" mapstructure:"probe_target"`

	Mirror MirrorConfig `json:"mirror" yaml:"mirror" mapstructure:"mirror"`

	// ArchiveBase is the PullPush API base URL.
	ArchiveBase string `json:"archive_base" yaml:"archive_base" mapstructure:"archive_base"`

	// ArchiveWindow limits archive submissions to this recent window.
	ArchiveWindow time.Duration `json:"archive_window" yaml:"archive_window" mapstructure:"archive_window"`

	// DirectBases are tried in order for the direct JSON API.
	DirectBases []string `json:"direct_bases" yaml:"direct_bases" mapstructure:"direct_bases"`

	// FeedBase is the base URL of the syndication feeds.
	FeedBase string `json:"feed_base" yaml:"feed_base" mapstructure:"feed_base"`

	// FeedChunkSize is the number of subreddits combined per feed request.
	FeedChunkSize int `json:"feed_chunk_size" yaml:"feed_chunk_size" mapstructure:"feed_chunk_size"`

	// EnrichTopK is the number of highest-scored items that get comments.
	EnrichTopK int `json:"enrich_top_k" yaml:"enrich_top_k" mapstructure:"enrich_top_k"`
}

// HNConfig configures the Hacker News category.
type HNConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Limit   int    `json:"limit" yaml:"limit" mapstructure:"limit"`
}

// FeedSource is one syndication feed and its display name.
type FeedSource struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	URL  string `json:"url" yaml:"url" mapstructure:"url"`
}

// FeedsConfig configures the generic RSS category.
type FeedsConfig struct {
	Enabled      bool         `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Sources      []FeedSource `json:"sources" yaml:"sources" mapstructure:"sources"`
	LimitPerFeed int          `json:"limit_per_feed" yaml:"limit_per_feed" mapstructure:"limit_per_feed"`
}

// CrawlConfig holds settings for the crawl cycle.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Pacing PacingConfig `json:"pacing" yaml:"pacing" mapstructure:"pacing"`
	Reddit RedditConfig `json:"reddit" yaml:"reddit" mapstructure:"reddit"`
	HN     HNConfig     `json:"hn" yaml:"hn" mapstructure:"hn"`
	Feeds  FeedsConfig  `json:"feeds" yaml:"feeds" mapstructure:"feeds"`
}

// AIConfig holds settings for the summarizer API.
type AIConfig struct {
	// Model is the generative model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the API root; tests point it at an httptest server.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries is the number of attempts for rate-limited or timed-out calls.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout bounds a single API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Delivery channel names.
const (
	ChannelDiscord  = "discord"
	ChannelTelegram = "telegram"
)

// DigestConfig holds settings for draining the store downstream.
type DigestConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// MaxPerGroup caps the records taken from each source group.
	MaxPerGroup int `json:"max_per_group" yaml:"max_per_group" mapstructure:"max_per_group"`

	// BatchSize is the number of records summarized per API call.
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// BatchDelay separates summary batches.
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay" mapstructure:"batch_delay"`

	// Language is the language the summaries are written in.
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// SendDelay separates messages posted to the delivery channel.
	SendDelay time.Duration `json:"send_delay" yaml:"send_delay" mapstructure:"send_delay"`

	// Channel selects the delivery channel: discord or telegram.
	Channel string `json:"channel" yaml:"channel" mapstructure:"channel"`

	DiscordWebhook string `json:"discord_webhook,omitempty" yaml:"discord_webhook,omitempty" mapstructure:"discord_webhook"`
	TelegramToken  string `json:"telegram_token,omitempty" yaml:"telegram_token,omitempty" mapstructure:"telegram_token"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id,omitempty" mapstructure:"telegram_chat_id"`
}

// ScheduleConfig holds cron expressions for the serve command.
type ScheduleConfig struct {
	Crawl    string `json:"crawl" yaml:"crawl" mapstructure:"crawl"`
	Digest   string `json:"digest" yaml:"digest" mapstructure:"digest"`
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`
}

// Config groups all stage configurations.
type Config struct {
	// DataDir holds the store, run state, and archive database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	Crawl    CrawlConfig    `json:"crawl" yaml:"crawl" mapstructure:"crawl"`
	Digest   DigestConfig   `json:"digest" yaml:"digest" mapstructure:"digest"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
}

// StorePath returns the path of the accumulation store document.
func (c Config) StorePath() string { return filepath.Join(c.DataDir, "posts.json") }

// StatePath returns the path of the run state document.
func (c Config) StatePath() string { return filepath.Join(c.DataDir, "crawl_state.json") }

// ArchivePath returns the path of the history database.
func (c Config) ArchivePath() string { return filepath.Join(c.DataDir, "trendcrawl.db") }

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Default returns a Config with the production defaults.
func Default() Config {
	return Config{
		DataDir: "data",
		Crawl: CrawlConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "trendcrawl/1.0",
			},
			Pacing: PacingConfig{
				TargetDelay:   3 * time.Second,
				EndpointDelay: 2 * time.Second,
				BatchDelay:    2 * time.Second,
			},
			Reddit: RedditConfig{
				Enabled: true,
				Subreddits: []string{
					"todayilearned", "science", "worldnews", "Futurology",
					"LifeProTips", "movies", "television", "food",
					"UpliftingNews", "explainlikeimfive",
					"Coffee", "tea", "whiskey", "CraftBeer", "fragrance",
					"puzzles", "DIY", "Breadit", "Baking", "knitting",
					"Embroidery", "cocktails", "minipainting", "modelmakers",
					"dadjokes", "tifu", "antiwork", "AmItheAsshole",
					"NoStupidQuestions",
				},
				LimitPerTarget: 8,
				EveryN:         8,
				ProbeTarget:    "todayilearned",
				Mirror: MirrorConfig{
					Instances: []string{
						"https://redlib.perennialte.ch",
						"https://redlib.privacyredirect.com",
						"https://reddit.adminforge.de",
						"https://reddit.nerdvpn.de",
						"https://redlib.thebunny.zone",
						"https://safereddit.com",
						"https://redlib.catsarch.com",
						"https://redlib.r4fo.com",
						"https://redlib.4o1x5.dev",
						"https://eu.safereddit.com",
					},
					MinBodySize:   10000,
					FailThreshold: 3,
					Timeout:       20 * time.Second,
					UserAgent:     browserUserAgent,
				},
				ArchiveBase:   "https://api.pullpush.io/reddit",
				ArchiveWindow: 48 * time.Hour,
				DirectBases: []string{
					"https://old.reddit.com",
					"https://www.reddit.com",
				},
				FeedBase:      "https://www.reddit.com",
				FeedChunkSize: 6,
				EnrichTopK:    30,
			},
			HN: HNConfig{
				Enabled: true,
				BaseURL: "https://hacker-news.firebaseio.com",
				Limit:   15,
			},
			Feeds: FeedsConfig{
				Enabled: true,
				Sources: []FeedSource{
					{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
					{Name: "Reuters", URL: "https://feeds.reuters.com/reuters/topNews"},
					{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
					{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml"},
					{Name: "Nature", URL: "https://www.nature.com/nature.rss"},
					{Name: "NYT", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
				},
				LimitPerFeed: 8,
			},
		},
		Digest: DigestConfig{
			AIConfig: AIConfig{
				Model:      "gemini-2.5-flash-lite",
				BaseURL:    "https://generativelanguage.googleapis.com",
				MaxRetries: 3,
				Timeout:    90 * time.Second,
			},
			MaxPerGroup: 50,
			BatchSize:   15,
			BatchDelay:  5 * time.Second,
			Language:    "Korean",
			SendDelay:   time.Second,
			Channel:     ChannelDiscord,
		},
		Schedule: ScheduleConfig{
			Crawl:    "0 * * * *",
			Digest:   "0 7 * * *",
			Timezone: "Asia/Seoul",
		},
	}
}
