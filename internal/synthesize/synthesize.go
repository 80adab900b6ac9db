// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesize turns the per-source analyses into a finished
// content brief. Model output is validated for shape and specificity;
// generic briefs are regenerated, and if the model never produces a
// usable one the package assembles a deterministic brief from the
// research itself.
package synthesize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/brief-engine/internal/genai"
	"github.com/meshintel/brief-engine/pkg/types"
)

// requiredKeys are the top-level JSON keys a brief must carry. A
// response missing any of them is treated as a failed attempt.
var requiredKeys = []string{
	"seoData",
	"targetSpecs",
	"structure",
	"competitorAnalysis",
	"contentRequirements",
	"writingInstructions",
	"metaData",
}

// Synthesizer generates content briefs from competitor analyses.
type Synthesizer struct {
	gen genai.Generator
	cfg types.SynthesisConfig
	log *zap.Logger
}

func NewSynthesizer(gen genai.Generator, cfg types.SynthesisConfig, log *zap.Logger) *Synthesizer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{gen: gen, cfg: cfg, log: log}
}

// Synthesize produces a brief for the topic. It never fails except on
// context cancellation: a brief that stays generic after every attempt
// is returned as-is with a warning, and total model failure falls back
// to the deterministic brief.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, analyses []types.SourceAnalysis) (types.Brief, error) {
	brief, err := genai.RetryUntil(ctx, s.cfg.MaxAttempts,
		func(ctx context.Context, attempt int) (types.Brief, error) {
			if attempt > 1 {
				s.log.Info("regenerating brief", zap.Int("attempt", attempt))
				if err := sleepCtx(ctx, s.cfg.RetryBackoff); err != nil {
					return types.Brief{}, err
				}
			}
			return s.generateOnce(ctx, topic, analyses, attempt)
		},
		func(b types.Brief) bool { return !IsGenericBrief(b) },
	)

	switch {
	case err == nil:
		return brief, nil
	case errors.Is(err, genai.ErrAttemptsExhausted):
		// Every attempt parsed but stayed generic. A generic brief
		// from real research still beats the deterministic scaffold.
		s.log.Warn("brief remained generic after all attempts, returning last result",
			zap.String("topic", topic), zap.Int("attempts", s.cfg.MaxAttempts))
		return brief, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return types.Brief{}, err
	default:
		s.log.Warn("model synthesis failed, assembling deterministic brief",
			zap.String("topic", topic), zap.Error(err))
		return FallbackBrief(topic, analyses), nil
	}
}

// generateOnce performs one model round trip and normalizes the result.
func (s *Synthesizer) generateOnce(ctx context.Context, topic string, analyses []types.SourceAnalysis, attempt int) (types.Brief, error) {
	prompt, err := buildSynthesisPrompt(topic, analyses, attempt)
	if err != nil {
		return types.Brief{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return types.Brief{}, err
	}

	brief, err := parseBrief(raw)
	if err != nil {
		s.log.Warn("rejecting malformed brief response",
			zap.Int("attempt", attempt), zap.Error(err))
		return types.Brief{}, err
	}

	return s.normalize(ctx, topic, analyses, brief), nil
}

// parseBrief validates the top-level shape before decoding. Checking
// keys on the raw object distinguishes "field missing" from "field
// empty", which the typed decode cannot.
func parseBrief(raw string) (types.Brief, error) {
	payload := genai.StripFences(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &top); err != nil {
		return types.Brief{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := top[key]; !ok {
			return types.Brief{}, fmt.Errorf("response missing required key %q", key)
		}
	}

	var brief types.Brief
	if err := json.Unmarshal([]byte(payload), &brief); err != nil {
		return types.Brief{}, fmt.Errorf("decoding brief: %w", err)
	}
	if brief.Structure.H1 == "" {
		return types.Brief{}, errors.New("brief has no h1")
	}
	if len(brief.Structure.Sections) == 0 {
		return types.Brief{}, errors.New("brief has no sections")
	}
	return brief, nil
}

// normalize enforces the structural invariants on a parsed brief:
// unique section headings, 4 to 7 sections, exactly three sub-points
// per section.
func (s *Synthesizer) normalize(ctx context.Context, topic string, analyses []types.SourceAnalysis, brief types.Brief) types.Brief {
	sections := dedupeSections(brief.Structure.Sections)

	// Drop filler sections, unless that would leave nothing to build
	// on.
	kept := make([]types.Section, 0, len(sections))
	for _, sec := range sections {
		if !isGenericHeading(sec.H2) {
			kept = append(kept, sec)
		}
	}
	if len(kept) > 0 {
		sections = kept
	}

	if len(sections) < 4 {
		sections = padSections(topic, analyses, sections)
	}
	if len(sections) > 7 {
		s.log.Debug("truncating oversized outline", zap.Int("sections", len(sections)))
		sections = sections[:7]
	}

	for i := range sections {
		sections[i].H3s = s.ensureSubpoints(ctx, topic, sections[i])
	}

	brief.Structure.Sections = sections
	return brief
}

func dedupeSections(sections []types.Section) []types.Section {
	seen := map[string]bool{}
	out := make([]types.Section, 0, len(sections))
	for _, sec := range sections {
		key := normalizeHeading(sec.H2)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sec)
	}
	return out
}

func normalizeHeading(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// padSections tops a short outline up to four sections, first from
// competitor headings not already used, then from topic-derived
// templates.
func padSections(topic string, analyses []types.SourceAnalysis, sections []types.Section) []types.Section {
	used := map[string]bool{}
	for _, sec := range sections {
		used[normalizeHeading(sec.H2)] = true
	}

	candidates := append(rankedHeadings(analyses), topicSectionTemplates(topic)...)
	for _, h := range candidates {
		if len(sections) >= 4 {
			break
		}
		key := normalizeHeading(h)
		if key == "" || used[key] || isGenericHeading(h) {
			continue
		}
		used[key] = true
		sections = append(sections, types.Section{H2: h})
	}
	return sections
}

// ensureSubpoints returns exactly three sub-points for the section.
// Template-shaped sub-points are dropped first, then surplus is
// truncated; a shortfall is repaired with a small model call and
// deterministically filled if that fails too.
func (s *Synthesizer) ensureSubpoints(ctx context.Context, topic string, sec types.Section) []string {
	existing := dropGenericSubpoints(dedupeStrings(sec.H3s))
	if len(existing) >= 3 {
		return existing[:3]
	}

	needed := 3 - len(existing)
	repaired, err := s.repairSubpoints(ctx, topic, types.Section{H2: sec.H2, H3s: existing}, needed)
	if err == nil {
		merged := dedupeStrings(append(existing, dropGenericSubpoints(repaired)...))
		if len(merged) >= 3 {
			return merged[:3]
		}
		existing = merged
	} else {
		s.log.Debug("sub-point repair failed, filling deterministically",
			zap.String("section", sec.H2), zap.Error(err))
	}

	return deterministicSubpoints(topic, sec.H2, existing)
}

// repairSubpoints asks the model for the missing sub-points.
func (s *Synthesizer) repairSubpoints(ctx context.Context, topic string, sec types.Section, needed int) ([]string, error) {
	return genai.RetryUntil(ctx, 2,
		func(ctx context.Context, attempt int) ([]string, error) {
			prompt, err := buildSubpointPrompt(topic, sec, needed)
			if err != nil {
				return nil, err
			}
			raw, err := s.gen.Generate(ctx, prompt)
			if err != nil {
				return nil, err
			}
			var points []string
			if err := json.Unmarshal([]byte(genai.StripFences(raw)), &points); err != nil {
				return nil, fmt.Errorf("decoding sub-points: %w", err)
			}
			return dedupeStrings(points), nil
		},
		func(points []string) bool { return len(points) >= needed },
	)
}

func dropGenericSubpoints(in []string) []string {
	out := make([]string, 0, len(in))
	for _, h3 := range in {
		if !isGenericSubpoint(h3) {
			out = append(out, h3)
		}
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
