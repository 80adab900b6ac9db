// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract fetches article content from candidate URLs and gates
// it through quality validation before it reaches analysis.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/brief-engine/pkg/ratelimit"
	"github.com/meshintel/brief-engine/pkg/types"
)

// Provider fetches the readable text of a single page.
type Provider interface {
	Name() string
	Extract(ctx context.Context, url string) (string, error)
}

// ErrInsufficientContent is returned when too few candidates survive
// quality validation to support a meaningful brief.
var ErrInsufficientContent = errors.New("unable to extract sufficient content, sources may be paywalled or protected")

// errorPhrases mark pages that render an error instead of an article.
// Only checked on short documents; long articles may legitimately
// mention these terms.
var errorPhrases = []string{
	"404",
	"not found",
	"page not found",
	"access denied",
	"forbidden",
	"error occurred",
	"something went wrong",
	"try again later",
}

// Extractor walks candidates in order, stopping once it has enough
// validated articles.
type Extractor struct {
	provider Provider
	cfg      types.ExtractionConfig
	limiter  *ratelimit.Limiter
	log      *zap.Logger
}

func NewExtractor(provider Provider, cfg types.ExtractionConfig, log *zap.Logger) *Extractor {
	if cfg.TargetSuccesses <= 0 {
		cfg.TargetSuccesses = 5
	}
	if cfg.MinSuccesses <= 0 {
		cfg.MinSuccesses = 2
	}
	if cfg.MinWordCount <= 0 {
		cfg.MinWordCount = 500
	}
	if cfg.InterCallDelay == 0 {
		cfg.InterCallDelay = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		provider: provider,
		cfg:      cfg,
		// Jitter stretches the pause between calls into a 1-2s window
		// at the default delay, so batches do not hit hosts on a
		// fixed cadence.
		limiter: ratelimit.New(cfg.InterCallDelay, 1.0),
		log:     log,
	}
}

// Close releases the pacing limiter.
func (e *Extractor) Close() {
	e.limiter.Stop()
}

// ExtractAll fetches candidates sequentially in discovery order and
// returns the validated articles, at most TargetSuccesses of them.
// Remaining candidates are not fetched once the target is met. Fewer
// than MinSuccesses validated articles is an error.
func (e *Extractor) ExtractAll(ctx context.Context, candidates []types.SourceCandidate) ([]types.ExtractedSource, error) {
	e.log.Info("starting content extraction",
		zap.Int("candidates", len(candidates)),
		zap.Int("target", e.cfg.TargetSuccesses),
		zap.String("provider", e.provider.Name()))

	successes := make([]types.ExtractedSource, 0, e.cfg.TargetSuccesses)
	attempted := 0

	for i, c := range candidates {
		if len(successes) >= e.cfg.TargetSuccesses {
			break
		}
		if i > 0 {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempted++

		src := e.extractOne(ctx, c)
		if !src.Success {
			if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ctx.Err()
			}
			e.log.Warn("candidate rejected",
				zap.String("url", c.URL), zap.String("reason", src.FailureReason))
			continue
		}
		e.log.Info("content extracted",
			zap.String("url", c.URL), zap.Int("words", src.WordCount))
		successes = append(successes, src)
	}

	if len(successes) < e.cfg.MinSuccesses {
		return nil, fmt.Errorf("%w: %d of %d candidates passed validation",
			ErrInsufficientContent, len(successes), attempted)
	}
	if len(successes) < e.cfg.TargetSuccesses {
		e.log.Warn("degraded extraction: below target article count",
			zap.Int("extracted", len(successes)), zap.Int("target", e.cfg.TargetSuccesses))
	}

	return successes, nil
}

// extractOne fetches and validates a single candidate. Failures are
// recorded on the returned value, never raised.
func (e *Extractor) extractOne(ctx context.Context, c types.SourceCandidate) types.ExtractedSource {
	src := types.ExtractedSource{URL: c.URL, Title: c.Title}

	content, err := e.provider.Extract(ctx, c.URL)
	if err != nil {
		src.FailureReason = err.Error()
		return src
	}

	content = strings.TrimSpace(content)
	if reason := e.validateContent(content); reason != "" {
		src.FailureReason = reason
		return src
	}

	if t := deriveTitle(content); t != "" {
		src.Title = t
	}
	if src.Title == "" {
		src.Title = "Untitled"
	}

	src.Content = content
	src.WordCount = len(strings.Fields(content))
	src.Success = true
	return src
}

// validateContent applies the quality gate. It returns an empty string
// for acceptable content, otherwise the rejection reason.
func (e *Extractor) validateContent(content string) string {
	if content == "" {
		return "empty document"
	}

	words := len(strings.Fields(content))
	if words < e.cfg.MinWordCount {
		return fmt.Sprintf("too short: %d words, need %d", words, e.cfg.MinWordCount)
	}

	// Error pages tend to be short. A long article is allowed to
	// mention "not found" in its prose.
	if len(content) < 2000 {
		lower := strings.ToLower(content)
		for _, phrase := range errorPhrases {
			if strings.Contains(lower, phrase) {
				return fmt.Sprintf("looks like an error page: contains %q", phrase)
			}
		}
	}

	if !hasStructure(content) && words <= 1000 {
		return "no article structure and too short to trust without it"
	}

	return ""
}

// hasStructure reports whether the document shows article shape:
// markdown-style headings or at least one paragraph break.
func hasStructure(content string) bool {
	paragraphs := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}
	if paragraphs >= 2 {
		return true
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return true
		}
	}
	return false
}

// deriveTitle takes the first non-blank line, stripped of a leading
// markdown heading marker.
func deriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line == "" {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		return line
	}
	return ""
}
