// Package ingest builds corpus snapshots from a fixed list of source pages.
//
// Each source is fetched and extracted independently; a dead source is
// logged and skipped so it never blocks the rest of the corpus from
// refreshing. Embedding happens once, in one batch over all extracted
// records, so record and vector sequences are always aligned.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"orgbot/internal/domain"
)

// SourceResult is the typed per-source ingestion outcome: either text
// extracted from the source or the error that prevented it.
type SourceResult struct {
	Source string
	Text   string
	Err    error
}

// Ingestor fetches, extracts and embeds the configured sources.
type Ingestor struct {
	fetcher  *Fetcher
	embedder domain.Embedder
	maxRunes int
	logger   *slog.Logger
}

// New creates an Ingestor. maxRunes caps each record's extracted text;
// zero or negative means the original 10000-rune cap.
func New(fetcher *Fetcher, embedder domain.Embedder, maxRunes int, logger *slog.Logger) *Ingestor {
	if maxRunes <= 0 {
		maxRunes = 10000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{fetcher: fetcher, embedder: embedder, maxRunes: maxRunes, logger: logger}
}

// Ingest attempts every source and returns a new snapshot. Per-source
// failures are logged and skipped. If all sources fail, the returned
// snapshot is empty and err is nil. A batch embedding failure returns an
// error and no snapshot, so the caller keeps whatever snapshot it already
// has.
func (in *Ingestor) Ingest(ctx context.Context, sources []string) (*domain.Snapshot, error) {
	var records []domain.Record
	for _, src := range sources {
		res := in.ingestOne(ctx, src)
		if res.Err != nil {
			in.logger.Error("source ingest failed", "source", res.Source, "error", res.Err)
			continue
		}
		in.logger.Info("source ingested", "source", res.Source, "runes", len([]rune(res.Text)))
		records = append(records, domain.Record{Source: res.Source, Text: res.Text})
	}

	if len(records) == 0 {
		in.logger.Warn("no sources ingested; corpus is empty", "attempted", len(sources))
		return &domain.Snapshot{}, nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	vectors, err := in.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(records) {
		return nil, fmt.Errorf("embed corpus: got %d vectors for %d records", len(vectors), len(records))
	}
	return &domain.Snapshot{Records: records, Vectors: vectors}, nil
}

func (in *Ingestor) ingestOne(ctx context.Context, src string) SourceResult {
	body, err := in.fetcher.Fetch(ctx, src)
	if err != nil {
		return SourceResult{Source: src, Err: fmt.Errorf("fetch: %w", err)}
	}
	text, err := ExtractText(body)
	if err != nil {
		return SourceResult{Source: src, Err: fmt.Errorf("extract: %w", err)}
	}
	if text == "" {
		return SourceResult{Source: src, Err: fmt.Errorf("no text content")}
	}
	return SourceResult{Source: src, Text: truncateRunes(text, in.maxRunes)}
}

// truncateRunes caps s at n runes. The cut is by raw count and may land
// mid-sentence, matching the upstream behavior.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
