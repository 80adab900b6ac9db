// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze profiles each extracted article with a generative
// model, recovering its real heading structure and keyword targets. A
// model failure degrades to a generic profile instead of failing the
// batch.
package analyze

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/brief-engine/internal/genai"
	"github.com/meshintel/brief-engine/pkg/ratelimit"
	"github.com/meshintel/brief-engine/pkg/types"
)

// Analyzer runs per-source analysis over a batch of extracted articles.
type Analyzer struct {
	gen     genai.Generator
	cfg     types.AnalysisConfig
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

func NewAnalyzer(gen genai.Generator, cfg types.AnalysisConfig, log *zap.Logger) *Analyzer {
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 12000
	}
	if cfg.InterCallDelay == 0 {
		cfg.InterCallDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		gen:     gen,
		cfg:     cfg,
		limiter: ratelimit.New(cfg.InterCallDelay, 0),
		log:     log,
	}
}

// Close releases the pacing limiter.
func (a *Analyzer) Close() {
	a.limiter.Stop()
}

// analysisResponse mirrors the JSON the model is asked to return.
type analysisResponse struct {
	PrimaryKeywords []string `json:"primaryKeywords"`
	ActualH2        []string `json:"actualH2Headings"`
	ActualH3        []string `json:"actualH3Headings"`
	WordCount       int      `json:"wordCount"`
	Tone            string   `json:"tone"`
	Style           string   `json:"style"`
	MainTopics      []string `json:"mainTopics"`
	UniqueInsights  []string `json:"uniqueInsights"`
}

// AnalyzeAll profiles every source in order, pacing between model
// calls. Every input source yields exactly one analysis; sources whose
// model call fails get the generic fallback profile. Only context
// cancellation aborts the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, sources []types.ExtractedSource) ([]types.SourceAnalysis, error) {
	analyses := make([]types.SourceAnalysis, 0, len(sources))
	for i, src := range sources {
		if i > 0 {
			if err := a.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		an, err := a.Analyze(ctx, src)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, an)
	}
	return analyses, nil
}

// Analyze profiles a single source. It returns an error only when ctx
// is done; any other failure produces the fallback profile so one bad
// article cannot sink the batch.
func (a *Analyzer) Analyze(ctx context.Context, src types.ExtractedSource) (types.SourceAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return types.SourceAnalysis{}, err
	}

	prompt, err := buildAnalysisPrompt(src.Content, a.cfg.MaxContentChars)
	if err != nil {
		a.log.Warn("prompt rendering failed, using fallback profile",
			zap.String("url", src.URL), zap.Error(err))
		return fallbackAnalysis(src), nil
	}

	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.SourceAnalysis{}, ctxErr
		}
		a.log.Warn("model call failed, using fallback profile",
			zap.String("url", src.URL), zap.Error(err))
		return fallbackAnalysis(src), nil
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(genai.StripFences(raw)), &resp); err != nil {
		a.log.Warn("unparseable analysis response, using fallback profile",
			zap.String("url", src.URL), zap.Error(err))
		return fallbackAnalysis(src), nil
	}

	an := types.SourceAnalysis{
		SourceURL:       src.URL,
		PrimaryKeywords: resp.PrimaryKeywords,
		Headings: types.HeadingSet{
			H2s: verifiedHeadings(resp.ActualH2, src.Content),
			H3s: verifiedHeadings(resp.ActualH3, src.Content),
		},
		WordCount:    resp.WordCount,
		Tone:         resp.Tone,
		Style:        resp.Style,
		KeyTopics:    resp.MainTopics,
		UniqueAngles: resp.UniqueInsights,
	}
	if an.WordCount <= 0 {
		an.WordCount = src.WordCount
	}
	if an.Tone == "" {
		an.Tone = "professional"
	}
	if an.Style == "" {
		an.Style = "article"
	}
	if len(an.PrimaryKeywords) == 0 {
		return fallbackAnalysis(src), nil
	}
	an.Generic = allGenericHeadings(an.Headings.H2s)

	dropped := len(resp.ActualH2) - len(an.Headings.H2s)
	if dropped > 0 {
		a.log.Debug("dropped fabricated headings",
			zap.String("url", src.URL), zap.Int("dropped", dropped))
	}
	return an, nil
}

// genericHeadings are filler section titles that carry no structural
// signal. An analysis built entirely from them is flagged so synthesis
// can weight it down.
var genericHeadings = map[string]bool{
	"introduction":   true,
	"main content":   true,
	"conclusion":     true,
	"overview":       true,
	"summary":        true,
	"final thoughts": true,
}

// allGenericHeadings reports whether every surviving heading is filler.
// An empty list counts as generic: the article gave us no structure to
// learn from.
func allGenericHeadings(h2s []string) bool {
	if len(h2s) == 0 {
		return true
	}
	for _, h := range h2s {
		key := strings.TrimRight(strings.ToLower(strings.TrimSpace(h)), ".:!?")
		if !genericHeadings[key] {
			return false
		}
	}
	return true
}

// verifiedHeadings keeps only headings that actually occur in the
// article text. Models fabricate plausible headings often enough that
// unverified ones would poison the competitor structure analysis.
func verifiedHeadings(claimed []string, content string) []string {
	lower := strings.ToLower(content)
	kept := make([]string, 0, len(claimed))
	for _, h := range claimed {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(h)) {
			kept = append(kept, h)
		}
	}
	return kept
}

// fallbackAnalysis is the degraded profile used when the model cannot
// produce one. It is deliberately generic and flagged as such so the
// synthesis stage can weight it down.
func fallbackAnalysis(src types.ExtractedSource) types.SourceAnalysis {
	return types.SourceAnalysis{
		SourceURL:       src.URL,
		PrimaryKeywords: []string{"content", "article", "blog"},
		Headings: types.HeadingSet{
			H2s: []string{"Introduction", "Main Content", "Conclusion"},
		},
		WordCount: src.WordCount,
		Tone:      "professional",
		Style:     "article",
		KeyTopics: []string{"general content"},
		Generic:   true,
	}
}
