// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meshintel/brief-engine/internal/analyze"
	"github.com/meshintel/brief-engine/internal/extract"
	"github.com/meshintel/brief-engine/internal/genai"
	"github.com/meshintel/brief-engine/internal/pipeline"
	"github.com/meshintel/brief-engine/internal/search"
	"github.com/meshintel/brief-engine/internal/store"
	"github.com/meshintel/brief-engine/internal/synthesize"
	"github.com/meshintel/brief-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Run the full pipeline and produce a content brief",
	Long: `Generate runs every stage for a topic: layered article search, content
extraction, per-source analysis, and brief synthesis. The finished brief
is saved to the local database and rendered to a Markdown artifact.

The account named by --user must exist, be subscribed, and have credits;
see the account subcommand.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("user", "", "account to charge for the run (required)")
	generateCmd.Flags().String("extractor", "jina", "content extraction backend: jina or local")
	generateCmd.Flags().Bool("no-artifact", false, "skip rendering the Markdown artifact")
	_ = generateCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])
	userID, _ := cmd.Flags().GetString("user")

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := pipelineConfig()

	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	p, closeStages, err := buildPipeline(cmd, cfg, s, log)
	if err != nil {
		return err
	}
	defer closeStages()

	record, err := p.Run(context.Background(), userID, topic)
	if err != nil {
		return describeRunError(err)
	}

	fmt.Printf("Brief %s saved for topic %q\n", record.ID, record.Topic)
	fmt.Printf("  sources found:     %d\n", record.Provenance.SourcesFound)
	fmt.Printf("  sources extracted: %d\n", record.Provenance.SourcesExtracted)
	fmt.Printf("  sources analyzed:  %d\n", record.Provenance.SourcesAnalyzed)
	if record.ArtifactPath != "" {
		fmt.Printf("  artifact:          %s\n", record.ArtifactPath)
	}
	return nil
}

// buildPipeline wires the stage implementations. The returned closer
// releases the stage rate limiters.
func buildPipeline(cmd *cobra.Command, cfg types.PipelineConfig, s *store.Store, log *zap.Logger) (*pipeline.Pipeline, func(), error) {
	finder := search.NewFinder(&search.SerpAPIBackend{
		APIKey:    cfg.Search.APIKey,
		UserAgent: cfg.Search.UserAgent,
		Client:    httpClient(cfg.Search.HTTPConfig),
	}, cfg.Search, log)

	provider, err := extractionProvider(cmd, cfg.Extraction)
	if err != nil {
		finder.Close()
		return nil, nil, err
	}
	extractor := extract.NewExtractor(provider, cfg.Extraction, log)

	analyzer := analyze.NewAnalyzer(&genai.GeminiBackend{
		Model:      cfg.Analysis.Model,
		APIKey:     cfg.Analysis.APIKey,
		MaxRetries: cfg.Analysis.MaxRetries,
	}, cfg.Analysis, log)

	synthesizer := synthesize.NewSynthesizer(&genai.GeminiBackend{
		Model:      cfg.Synthesis.Model,
		APIKey:     cfg.Synthesis.APIKey,
		MaxRetries: cfg.Synthesis.MaxRetries,
	}, cfg.Synthesis, log)

	p := &pipeline.Pipeline{
		Finder:      finder,
		Extractor:   extractor,
		Analyzer:    analyzer,
		Synthesizer: synthesizer,
		Store:       s,
		Ledger:      s,
		Notifier:    &logNotifier{log: log},
		Renderer:    s,
		Log:         log,
	}
	if noArtifact, _ := cmd.Flags().GetBool("no-artifact"); noArtifact {
		p.Renderer = nil
	}

	closer := func() {
		finder.Close()
		extractor.Close()
		analyzer.Close()
	}
	return p, closer, nil
}

func extractionProvider(cmd *cobra.Command, cfg types.ExtractionConfig) (extract.Provider, error) {
	backend := cfg.Backend
	if flagVal, _ := cmd.Flags().GetString("extractor"); flagVal != "" {
		backend = types.ExtractionBackend(flagVal)
	}
	switch backend {
	case types.BackendJina, "":
		return &extract.JinaProvider{
			APIKey:    cfg.APIKey,
			UserAgent: cfg.UserAgent,
			Client:    httpClient(cfg.HTTPConfig),
		}, nil
	case types.BackendLocal:
		return &extract.LocalProvider{
			UserAgent: cfg.UserAgent,
			Client:    httpClient(cfg.HTTPConfig),
		}, nil
	default:
		return nil, fmt.Errorf("unknown extraction backend %q: use jina or local", backend)
	}
}

// describeRunError maps pipeline failures to actionable CLI messages.
func describeRunError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrNoCredits):
		return fmt.Errorf("account has no credits left: top up with 'brief-engine account add'")
	case errors.Is(err, pipeline.ErrNoSubscription):
		return fmt.Errorf("account is not subscribed: create it with 'brief-engine account add --subscribed'")
	}

	var se *pipeline.StageError
	if errors.As(err, &se) {
		fmt.Fprintf(os.Stderr, "pipeline failed during %s\n", se.Stage)
		return fmt.Errorf("%s", se.Message)
	}
	return err
}

// logNotifier announces finished briefs through the logger. A hosted
// deployment would swap in email or webhook delivery here.
type logNotifier struct {
	log *zap.Logger
}

func (n *logNotifier) BriefReady(ctx context.Context, record *types.BriefRecord) error {
	n.log.Info("brief ready",
		zap.String("user", record.UserID),
		zap.String("id", record.ID),
		zap.String("topic", record.Topic))
	return nil
}
