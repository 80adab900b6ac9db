// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/brief-engine/internal/search"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [topic]",
	Short: "Run the source search stage on its own",
	Long: `Sources runs only the layered article search for a topic and prints the
candidate URLs that survive filtering and deduplication. Useful for
checking what the full pipeline would work from.`,
	Args: cobra.ExactArgs(1),
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().Int("max", 0, "override the maximum number of sources")
	sourcesCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := pipelineConfig()
	if max, _ := cmd.Flags().GetInt("max"); max > 0 {
		cfg.Search.MaxSources = max
	}

	finder := search.NewFinder(&search.SerpAPIBackend{
		APIKey:    cfg.Search.APIKey,
		UserAgent: cfg.Search.UserAgent,
		Client:    httpClient(cfg.Search.HTTPConfig),
	}, cfg.Search, log)
	defer finder.Close()

	candidates, err := finder.FindSources(context.Background(), topic)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	for i, c := range candidates {
		fmt.Printf("%2d. %s\n    %s\n", i+1, c.Title, c.URL)
	}
	fmt.Printf("\n%d candidate sources\n", len(candidates))
	return nil
}
