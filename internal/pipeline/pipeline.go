// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a brief-generation run: credit gate,
// the four content stages in order, persistence, then best-effort
// deliveries. Stage failures carry a stage tag so callers can map them
// to user-facing messages.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meshintel/brief-engine/internal/metrics"
	"github.com/meshintel/brief-engine/pkg/types"
)

// Collaborator interfaces, one per stage plus the side-effect surfaces.
// Concrete implementations live in their stage packages; tests supply
// mocks.

type SourceFinder interface {
	FindSources(ctx context.Context, topic string) ([]types.SourceCandidate, error)
}

type ContentExtractor interface {
	ExtractAll(ctx context.Context, candidates []types.SourceCandidate) ([]types.ExtractedSource, error)
}

type SourceAnalyzer interface {
	AnalyzeAll(ctx context.Context, sources []types.ExtractedSource) ([]types.SourceAnalysis, error)
}

type BriefSynthesizer interface {
	Synthesize(ctx context.Context, topic string, analyses []types.SourceAnalysis) (types.Brief, error)
}

// BriefStore persists finished runs. SaveBrief assigns the record ID
// and creation time.
type BriefStore interface {
	SaveBrief(ctx context.Context, record *types.BriefRecord) error
	SetArtifactPath(ctx context.Context, id, path string) error
}

// CreditLedger gates runs on account standing. CheckAndReserve returns
// ErrNoCredits or ErrNoSubscription to block a run before any work
// happens; Deduct settles the reservation after delivery.
type CreditLedger interface {
	CheckAndReserve(ctx context.Context, userID string) error
	Deduct(ctx context.Context, userID string) error
}

// Notifier announces a finished brief to the user. Failures are logged,
// never surfaced: the brief is already saved.
type Notifier interface {
	BriefReady(ctx context.Context, record *types.BriefRecord) error
}

// ArtifactRenderer writes the human-readable artifact for a record and
// returns its path.
type ArtifactRenderer interface {
	Render(record *types.BriefRecord) (string, error)
}

// Pipeline wires the stages together. Ledger, Notifier, and Renderer
// are optional; a nil value disables that concern.
type Pipeline struct {
	Finder      SourceFinder
	Extractor   ContentExtractor
	Analyzer    SourceAnalyzer
	Synthesizer BriefSynthesizer
	Store       BriefStore
	Ledger      CreditLedger
	Notifier    Notifier
	Renderer    ArtifactRenderer

	// SynthesisRetryBackoff is the pause before the one synthesis
	// retry (default 2s).
	SynthesisRetryBackoff time.Duration

	Log *zap.Logger
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// Run executes a full brief generation for the user and topic. On
// success the returned record is already persisted; artifact rendering,
// credit deduction, and notification have been attempted best-effort.
func (p *Pipeline) Run(ctx context.Context, userID, topic string) (*types.BriefRecord, error) {
	log := p.logger().With(zap.String("user", userID), zap.String("topic", topic))
	start := time.Now()

	if p.Ledger != nil {
		if err := p.Ledger.CheckAndReserve(ctx, userID); err != nil {
			metrics.RecordRun("blocked")
			return nil, err
		}
	}

	record := &types.BriefRecord{UserID: userID, Topic: topic}

	candidates, err := p.runSearch(ctx, log, topic, record)
	if err != nil {
		metrics.RecordRun("error")
		return nil, err
	}
	sources, err := p.runExtraction(ctx, log, candidates, record)
	if err != nil {
		metrics.RecordRun("error")
		return nil, err
	}
	analyses, err := p.runAnalysis(ctx, log, sources, record)
	if err != nil {
		metrics.RecordRun("error")
		return nil, err
	}
	brief, err := p.runSynthesis(ctx, log, topic, analyses)
	if err != nil {
		metrics.RecordRun("error")
		return nil, err
	}
	record.Brief = brief

	if err := p.runSave(ctx, log, record); err != nil {
		metrics.RecordRun("error")
		return nil, err
	}

	p.deliver(ctx, log, record)

	metrics.RecordRun("ok")
	log.Info("brief generation complete",
		zap.String("id", record.ID), zap.Duration("elapsed", time.Since(start)))
	return record, nil
}

func (p *Pipeline) runSearch(ctx context.Context, log *zap.Logger, topic string, record *types.BriefRecord) ([]types.SourceCandidate, error) {
	start := time.Now()
	candidates, err := p.Finder.FindSources(ctx, topic)
	metrics.ObserveStage(string(StageSearch), time.Since(start))
	if err != nil {
		return nil, stageErr(StageSearch, "could not find enough articles on this topic", err)
	}

	record.Provenance.SourcesFound = len(candidates)
	record.Provenance.Sources = make([]types.SourceRef, 0, len(candidates))
	for _, c := range candidates {
		record.Provenance.Sources = append(record.Provenance.Sources, types.SourceRef{URL: c.URL, Title: c.Title})
	}
	log.Info("stage complete", zap.String("stage", string(StageSearch)), zap.Int("sources", len(candidates)))
	return candidates, nil
}

func (p *Pipeline) runExtraction(ctx context.Context, log *zap.Logger, candidates []types.SourceCandidate, record *types.BriefRecord) ([]types.ExtractedSource, error) {
	start := time.Now()
	sources, err := p.Extractor.ExtractAll(ctx, candidates)
	metrics.ObserveStage(string(StageExtraction), time.Since(start))
	if err != nil {
		return nil, stageErr(StageExtraction, "could not read enough of the articles found", err)
	}

	record.Provenance.SourcesExtracted = len(sources)
	log.Info("stage complete", zap.String("stage", string(StageExtraction)), zap.Int("extracted", len(sources)))
	return sources, nil
}

func (p *Pipeline) runAnalysis(ctx context.Context, log *zap.Logger, sources []types.ExtractedSource, record *types.BriefRecord) ([]types.SourceAnalysis, error) {
	start := time.Now()
	analyses, err := p.Analyzer.AnalyzeAll(ctx, sources)
	metrics.ObserveStage(string(StageAnalysis), time.Since(start))
	if err != nil {
		return nil, stageErr(StageAnalysis, "could not analyze the extracted articles", err)
	}

	record.Provenance.SourcesAnalyzed = len(analyses)
	log.Info("stage complete", zap.String("stage", string(StageAnalysis)), zap.Int("analyzed", len(analyses)))
	return analyses, nil
}

// runSynthesis retries once on failure. Synthesis is the most expensive
// stage to reach, so one model hiccup should not discard the research
// behind it.
func (p *Pipeline) runSynthesis(ctx context.Context, log *zap.Logger, topic string, analyses []types.SourceAnalysis) (types.Brief, error) {
	start := time.Now()
	defer func() { metrics.ObserveStage(string(StageSynthesis), time.Since(start)) }()

	brief, err := p.Synthesizer.Synthesize(ctx, topic, analyses)
	if err == nil {
		log.Info("stage complete", zap.String("stage", string(StageSynthesis)))
		return brief, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.Brief{}, stageErr(StageSynthesis, "brief generation interrupted", err)
	}

	backoff := p.SynthesisRetryBackoff
	if backoff == 0 {
		backoff = 2 * time.Second
	}
	log.Warn("synthesis failed, retrying once", zap.Error(err), zap.Duration("backoff", backoff))

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return types.Brief{}, stageErr(StageSynthesis, "brief generation interrupted", ctx.Err())
	case <-timer.C:
	}

	brief, err = p.Synthesizer.Synthesize(ctx, topic, analyses)
	if err != nil {
		return types.Brief{}, stageErr(StageSynthesis, "could not generate a brief from the research", err)
	}
	log.Info("stage complete after retry", zap.String("stage", string(StageSynthesis)))
	return brief, nil
}

func (p *Pipeline) runSave(ctx context.Context, log *zap.Logger, record *types.BriefRecord) error {
	start := time.Now()
	err := p.Store.SaveBrief(ctx, record)
	metrics.ObserveStage(string(StageSave), time.Since(start))
	if err != nil {
		return stageErr(StageSave, "brief was generated but could not be saved", err)
	}
	log.Info("stage complete", zap.String("stage", string(StageSave)), zap.String("id", record.ID))
	return nil
}

// deliver runs the post-save side effects. None of them can fail the
// run: the brief is persisted, everything past that point is logged and
// dropped.
func (p *Pipeline) deliver(ctx context.Context, log *zap.Logger, record *types.BriefRecord) {
	if p.Renderer != nil {
		path, err := p.Renderer.Render(record)
		if err != nil {
			log.Warn("artifact rendering failed", zap.Error(err))
		} else {
			record.ArtifactPath = path
			if err := p.Store.SetArtifactPath(ctx, record.ID, path); err != nil {
				log.Warn("could not record artifact path", zap.Error(err))
			}
		}
	}

	var g errgroup.Group
	if p.Ledger != nil {
		g.Go(func() error {
			if err := p.Ledger.Deduct(ctx, record.UserID); err != nil {
				log.Warn("credit deduction failed", zap.Error(err))
			}
			return nil
		})
	}
	if p.Notifier != nil {
		g.Go(func() error {
			if err := p.Notifier.BriefReady(ctx, record); err != nil {
				log.Warn("notification failed", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
