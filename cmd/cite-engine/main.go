// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cite-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cite-engine/internal/secrets"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the process logger, configured in PersistentPreRunE.
var logger = zerolog.Nop()

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the cite-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "cite-engine",
	Short: "Citation resolution and normalization engine",
	Long: `cite-engine extracts citation occurrences from source text, matches them
against a reference-library snapshot through exact, normalized, and fuzzy
tiers, and emits normalized bibliographies as BibTeX, LaTeX, or CSL-YAML.

Unresolvable occurrences never abort a run: every failure is classified
and collected into a structured report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		s, err := secrets.Load(".secrets/")
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
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		if unknown := secrets.Unknown(s); len(unknown) > 0 {
			logger.Warn().Strs("keys", unknown).Msg("unrecognized secret files ignored by lookups")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cite-engine.yaml or ~/.config/cite-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cite-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cite-engine"))
		}
	}

	viper.SetDefault("cache.dir", ".cache")
	viper.SetDefault("cache.ttl", 30*24*time.Hour)
	viper.SetDefault("lookup.timeout", 30*time.Second)
	viper.SetDefault("lookup.min_interval", time.Second)
	viper.SetDefault("lookup.max_retries", 4)
	viper.SetDefault("pipeline.workers", 4)

	viper.SetEnvPrefix("CITE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the run configuration from config file, env,
// and secrets.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Cache: types.CacheConfig{
			Dir: viper.GetString("cache.dir"),
			TTL: viper.GetDuration("cache.ttl"),
		},
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("lookup.timeout"),
				UserAgent: "cite-engine/" + version,
			},
			MinInterval:   viper.GetDuration("lookup.min_interval"),
			MaxRetries:    viper.GetInt("lookup.max_retries"),
			Mailto:        secretDefault(secrets.KeyCrossRefMailto, viper.GetString("lookup.mailto")),
			DataCiteToken: secretDefault(secrets.KeyDataCiteToken, viper.GetString("lookup.datacite_token")),
		},
		Resolver: types.ResolverConfig{
			FuzzyThreshold:  viper.GetFloat64("resolver.fuzzy_threshold"),
			AmbiguityMargin: viper.GetFloat64("resolver.ambiguity_margin"),
			TitleWeight:     viper.GetFloat64("resolver.title_weight"),
			AuthorWeight:    viper.GetFloat64("resolver.author_weight"),
		},
		Workers: viper.GetInt("pipeline.workers"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
