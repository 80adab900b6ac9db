// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns a topic into a deduplicated list of candidate
// source URLs using layered query broadening and URL-pattern filtering.
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meshintel/brief-engine/pkg/ratelimit"
	"github.com/meshintel/brief-engine/pkg/types"
)

// Backend searches a single provider. Implementations follow the Strategy
// pattern so tests can supply a mock.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, count int) ([]types.SourceCandidate, error)
}

// ErrInsufficientSources reports that both search layers together produced
// fewer valid URLs than the hard floor.
var ErrInsufficientSources = errors.New("unable to find sufficient articles on this topic")

// allowPatterns: a URL must contain at least one of these to count as an
// article-style page.
var allowPatterns = []string{
	"/blog/",
	"/article/",
	"/post/",
	"/guide/",
	"/resource/",
	"/learn/",
	"/insights/",
	"/news/",
	"/content/",
}

// blockPatterns: a URL containing any of these is rejected outright
// (product/marketing pages and social platforms).
var blockPatterns = []string{
	"/pricing",
	"/product/",
	"/products/",
	"/signup",
	"/sign-up",
	"/login",
	"/demo",
	"/about",
	"/contact",
	"/careers",
	"/jobs",
	"youtube.com",
	"facebook.com",
	"twitter.com",
	"linkedin.com",
	"instagram.com",
	"tiktok.com",
	"reddit.com",
}

// qualifierPattern matches superlative qualifiers stripped before the
// fallback layer broadens the search.
var qualifierPattern = regexp.MustCompile(`(?i)\b(best|top|leading|ultimate|essential)\b`)

// Finder accumulates candidate sources across the two search layers.
type Finder struct {
	backend Backend
	cfg     types.SearchConfig
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

// NewFinder builds a Finder with config defaults applied.
func NewFinder(backend Backend, cfg types.SearchConfig, log *zap.Logger) *Finder {
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = 10
	}
	if cfg.MinSources <= 0 {
		cfg.MinSources = 2
	}
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = 10
	}
	if cfg.InterQueryDelay == 0 {
		cfg.InterQueryDelay = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Finder{
		backend: backend,
		cfg:     cfg,
		limiter: ratelimit.New(cfg.InterQueryDelay, 0),
		log:     log,
	}
}

// Close releases the pacing limiter.
func (f *Finder) Close() {
	f.limiter.Stop()
}

// FindSources runs the specific layer, then the fallback layer if the
// specific layer fell short of the soft target, and enforces the hard
// floor. Candidates come back in discovery order, capped at MaxSources.
func (f *Finder) FindSources(ctx context.Context, topic string) ([]types.SourceCandidate, error) {
	topic = strings.TrimSpace(topic)
	if len(topic) < 3 {
		return nil, fmt.Errorf("topic must be at least 3 characters long")
	}

	f.log.Info("starting layered source search", zap.String("topic", topic))

	acc := newAccumulator(f.cfg.MaxSources)

	if err := f.runLayer(ctx, "specific", specificQueries(topic), acc); err != nil {
		return nil, err
	}

	if acc.len() < f.cfg.MaxSources {
		f.log.Info("specific layer below target, activating fallback",
			zap.Int("found", acc.len()), zap.Int("target", f.cfg.MaxSources))
		if err := f.runLayer(ctx, "fallback", fallbackQueries(topic), acc); err != nil {
			return nil, err
		}
	}

	n := acc.len()
	if n < f.cfg.MinSources {
		return nil, fmt.Errorf("%w: found %d valid URLs for topic %q", ErrInsufficientSources, n, topic)
	}
	if n < 5 {
		f.log.Warn("degraded result: fewer sources than recommended",
			zap.Int("found", n), zap.Int("recommended", 5))
	}

	candidates := acc.candidates()
	f.log.Info("source search complete", zap.Int("sources", len(candidates)))
	return candidates, nil
}

// runLayer issues each query in order, filtering and deduplicating into
// acc, until the accumulator is full or the templates are exhausted. A
// failing query is logged and skipped; only context cancellation aborts.
func (f *Finder) runLayer(ctx context.Context, layer string, queries []string, acc *accumulator) error {
	for i, query := range queries {
		if acc.full() {
			return nil
		}
		if i > 0 {
			if err := f.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		results, err := f.backend.Search(ctx, query, f.cfg.ResultsPerQuery)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			f.log.Warn("search query failed, trying next template",
				zap.String("layer", layer), zap.String("query", query), zap.Error(err))
			continue
		}

		for _, r := range results {
			if IsValidSourceURL(r.URL) {
				acc.add(r)
			}
		}
		f.log.Debug("query processed",
			zap.String("layer", layer), zap.String("query", query), zap.Int("accumulated", acc.len()))
	}
	return nil
}

// IsValidSourceURL reports whether a URL looks like an article page: it
// must contain no block pattern and at least one allow pattern. Matching
// is case-insensitive.
func IsValidSourceURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, p := range blockPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, p := range allowPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// specificQueries is the first-layer template sequence.
func specificQueries(topic string) []string {
	return []string{
		topic + " blog",
		topic + " inurl:blog",
		topic + " article",
		topic + " guide",
	}
}

// fallbackQueries broadens the topic by stripping superlative qualifiers
// and trying more general templates.
func fallbackQueries(topic string) []string {
	simplified := strings.Join(strings.Fields(qualifierPattern.ReplaceAllString(topic, "")), " ")
	if simplified == "" {
		simplified = topic
	}
	return []string{
		simplified + " article",
		simplified + " how to",
		simplified + " comparison",
		simplified + " review",
		"learn about " + simplified,
		simplified + " explained",
	}
}

// accumulator collects candidates in discovery order, deduplicated by
// normalized URL, up to a cap.
type accumulator struct {
	seen  map[string]bool
	list  []types.SourceCandidate
	limit int
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{seen: make(map[string]bool), limit: limit}
}

func (a *accumulator) add(c types.SourceCandidate) {
	if a.full() {
		return
	}
	key := normalizeURL(c.URL)
	if a.seen[key] {
		return
	}
	a.seen[key] = true
	a.list = append(a.list, c)
}

func (a *accumulator) len() int   { return len(a.list) }
func (a *accumulator) full() bool { return len(a.list) >= a.limit }

func (a *accumulator) candidates() []types.SourceCandidate {
	out := make([]types.SourceCandidate, len(a.list))
	copy(out, a.list)
	return out
}

// normalizeURL lowercases and strips trailing slashes so near-identical
// URLs deduplicate.
func normalizeURL(u string) string {
	return strings.TrimRight(strings.ToLower(u), "/")
}
