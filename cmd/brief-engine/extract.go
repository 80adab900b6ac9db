// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshintel/brief-engine/internal/extract"
	"github.com/meshintel/brief-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [urls...]",
	Short: "Run the content extraction stage on specific URLs",
	Long: `Extract fetches the given URLs through the configured extraction
backend and reports which ones pass quality validation. Use it to check
why a source was rejected during a pipeline run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("extractor", "jina", "content extraction backend: jina or local")
	extractCmd.Flags().Bool("content", false, "print the extracted content, not just the summary")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := pipelineConfig()
	// Inspecting specific URLs: extract all of them, even one.
	cfg.Extraction.TargetSuccesses = len(args)
	cfg.Extraction.MinSuccesses = 1

	provider, err := extractionProvider(cmd, cfg.Extraction)
	if err != nil {
		return err
	}
	extractor := extract.NewExtractor(provider, cfg.Extraction, log)
	defer extractor.Close()

	candidates := make([]types.SourceCandidate, 0, len(args))
	for _, url := range args {
		candidates = append(candidates, types.SourceCandidate{URL: url})
	}

	sources, err := extractor.ExtractAll(context.Background(), candidates)
	if err != nil {
		return err
	}

	showContent, _ := cmd.Flags().GetBool("content")
	for _, src := range sources {
		fmt.Printf("%s\n  title: %s\n  words: %d\n", src.URL, src.Title, src.WordCount)
		if showContent {
			fmt.Println(src.Content)
		}
	}
	fmt.Printf("\n%d of %d URLs passed validation\n", len(sources), len(args))
	return nil
}
