// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, discord-webhook, telegram-bot-token, telegram-chat-id.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Key file names.
const (
	GeminiAPIKey     = "gemini-api-key"
	DiscordWebhook   = "discord-webhook"
	TelegramBotToken = "telegram-bot-token"
	TelegramChatID   = "telegram-chat-id"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on w but do not abort.
func Load(dir string, w io.Writer) (map[string]string, error) {
	if w == nil {
		w = io.Discard
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies the known secrets into the digest configuration. Values
// already set in cfg, from the config file or the environment, win.
func Apply(cfg *types.DigestConfig, secrets map[string]string) error {
	fill(&cfg.APIKey, secrets[GeminiAPIKey])
	fill(&cfg.DiscordWebhook, secrets[DiscordWebhook])
	fill(&cfg.TelegramToken, secrets[TelegramBotToken])

	if raw := secrets[TelegramChatID]; raw != "" && cfg.TelegramChatID == 0 {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", TelegramChatID, err)
		}
		cfg.TelegramChatID = id
	}
	return nil
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
