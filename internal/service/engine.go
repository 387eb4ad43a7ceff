// Package service wires ingestion, retrieval and answer synthesis into the
// engine the front-ends call.
//
// The engine owns the only piece of shared state in the pipeline: the
// current corpus snapshot, published through an atomic pointer. Readers
// always observe one complete snapshot; a refresh builds the next snapshot
// off to the side and swaps the pointer in one step.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"orgbot/internal/answer"
	"orgbot/internal/domain"
	"orgbot/internal/ingest"
	"orgbot/internal/retrieval"
)

// Engine exposes the caller-facing contract: Refresh rebuilds and publishes
// the corpus snapshot; Answer grounds a question in the current snapshot
// and always returns displayable text.
type Engine struct {
	ingestor  *ingest.Ingestor
	retriever *retrieval.Retriever
	synth     *answer.Synthesizer
	sources   []string
	topK      int
	logger    *slog.Logger

	snapshot atomic.Pointer[domain.Snapshot]
}

// NewEngine assembles the pipeline around a fixed source list.
func NewEngine(ingestor *ingest.Ingestor, retriever *retrieval.Retriever, synth *answer.Synthesizer, sources []string, topK int, logger *slog.Logger) *Engine {
	if topK < 1 {
		topK = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ingestor:  ingestor,
		retriever: retriever,
		synth:     synth,
		sources:   sources,
		topK:      topK,
		logger:    logger,
	}
}

// Snapshot returns the currently published snapshot. Before the first
// successful refresh it returns an empty snapshot, never nil.
func (e *Engine) Snapshot() *domain.Snapshot {
	if s := e.snapshot.Load(); s != nil {
		return s
	}
	return &domain.Snapshot{}
}

// Refresh ingests all sources and publishes the resulting snapshot.
// Idempotent and safe to call repeatedly. If ingestion fails outright
// (embedding error), the previously published snapshot stays in place.
func (e *Engine) Refresh(ctx context.Context) error {
	snap, err := e.ingestor.Ingest(ctx, e.sources)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	e.snapshot.Store(snap)
	e.logger.Info("corpus snapshot published", "records", snap.Len())
	return nil
}

// Answer grounds the question in the current snapshot and returns the
// synthesized reply. It never fails observably: a retrieval error degrades
// to empty context and a generation error to the fallback text.
func (e *Engine) Answer(ctx context.Context, question string) string {
	contextText, err := e.retriever.Context(ctx, question, e.Snapshot(), e.topK)
	if err != nil {
		e.logger.Error("context retrieval failed", "error", err)
		contextText = ""
	}
	return e.synth.Answer(ctx, question, contextText)
}

// RunRefreshLoop re-ingests the corpus on the given interval until the
// context is cancelled. A failed refresh is logged and retried on the next
// tick; the published snapshot is untouched in the meantime.
func (e *Engine) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Refresh(ctx); err != nil {
				e.logger.Error("periodic refresh failed", "error", err)
			}
		}
	}
}
