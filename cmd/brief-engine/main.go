// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the brief-engine CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/meshintel/brief-engine/internal/secrets"
	"github.com/meshintel/brief-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for
// key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the brief-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "brief-engine",
	Short: "Research-driven content brief generation",
	Long: `brief-engine turns a topic into a structured content brief: it finds
top-ranking articles on the topic, extracts and analyzes their content,
and synthesizes an SEO brief grounded in what the competition actually
covers.

Each pipeline stage is also exposed as its own subcommand (sources,
extract) for inspection and debugging; generate runs the whole
pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./brief-engine.yaml or ~/.config/brief-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("brief-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "brief-engine"))
		}
	}

	viper.SetEnvPrefix("BRIEF_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger. Verbose runs get development output
// with debug level; normal runs get production JSON at info level.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// pipelineConfig assembles the full stage configuration from the config
// file and loaded secrets.
func pipelineConfig() types.PipelineConfig {
	var cfg types.PipelineConfig
	// Decoding errors leave the zero config; stage constructors apply
	// their defaults on top.
	_ = viper.Unmarshal(&cfg)

	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = "brief-engine/" + version
	}
	if cfg.Extraction.UserAgent == "" {
		cfg.Extraction.UserAgent = "brief-engine/" + version
	}

	cfg.Search.APIKey = secretDefault("serpapi-api-key", cfg.Search.APIKey)
	cfg.Extraction.APIKey = secretDefault("jina-api-key", cfg.Extraction.APIKey)
	cfg.Analysis.APIKey = secretDefault("gemini-api-key", cfg.Analysis.APIKey)
	cfg.Synthesis.APIKey = secretDefault("gemini-api-key", cfg.Synthesis.APIKey)

	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gemini-2.5-flash"
	}
	if cfg.Synthesis.Model == "" {
		cfg.Synthesis.Model = cfg.Analysis.Model
	}
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = "briefs.db"
	}
	if cfg.Store.ArtifactDir == "" {
		cfg.Store.ArtifactDir = "artifacts"
	}
	return cfg
}

// httpClient builds a client with the configured timeout.
func httpClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
