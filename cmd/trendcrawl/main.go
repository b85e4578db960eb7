// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trendcrawl CLI.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trendcrawl/internal/archive"
	"github.com/pdiddy/trendcrawl/internal/secrets"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// configErr records a config file that exists but cannot be read.
var configErr error

// rootCmd is the base command for the trendcrawl CLI.
var rootCmd = &cobra.Command{
	Use:   "trendcrawl",
	Short: "Collect trending posts from many sources into one daily digest",
	Long: `trendcrawl polls Hacker News, news feeds, and Reddit on a schedule and
accumulates what it sees in a local store. Reddit is reached through a chain
of fallbacks (mirror instances, an archive API, the JSON API, and RSS) so a
blocked path degrades the crawl instead of stopping it.

Once a day the digest command ranks the accumulated posts, has them
summarized, delivers the summaries to Discord or Telegram, and empties the
store. The serve command runs both on cron schedules.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trendcrawl.yaml or ~/.config/trendcrawl/trendcrawl.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for the store, run state, and archive (default: data)")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// initConfig layers the built-in defaults, the config file, and
// TRENDCRAWL_* environment variables.
func initConfig() {
	defaults, err := yaml.Marshal(types.Default())
	if err != nil {
		configErr = fmt.Errorf("encoding default config: %w", err)
		return
	}
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewReader(defaults)); err != nil {
		configErr = fmt.Errorf("loading default config: %w", err)
		return
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trendcrawl")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trendcrawl"))
		}
	}

	viper.SetEnvPrefix("TRENDCRAWL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Secret keys have no default, so AutomaticEnv alone never sees them.
	for _, key := range []string{"digest.api_key", "digest.discord_webhook", "digest.telegram_token", "digest.telegram_chat_id"} {
		viper.BindEnv(key)
	}

	err = viper.MergeInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
	case cfgFile == "" && errors.Is(err, os.ErrNotExist):
	default:
		configErr = fmt.Errorf("reading config file: %w", err)
	}
}

// loadConfig decodes the layered configuration and fills unset
// credentials from the secrets directory.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := secrets.Apply(&cfg.Digest, loadedSecrets); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// openArchive opens the history database. The archive is optional; a
// failure is reported and the command continues without it.
func openArchive(cfg types.Config) *archive.Archive {
	a, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: archive unavailable: %v\n", err)
		return nil
	}
	return a
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
