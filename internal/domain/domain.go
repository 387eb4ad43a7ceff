package domain

import "context"

// Record is one corpus document extracted from a configured source.
// Records are created fresh on every ingestion pass and never mutated.
type Record struct {
	Source string // locator the text came from; unique within a snapshot
	Text   string // extracted, whitespace-normalized, length-capped body text
}

// Snapshot is one immutable version of the corpus: records and their
// embedding vectors aligned by position. Either both slices are empty or
// both have the same positive length. A refresh builds a new Snapshot that
// replaces the old one wholesale; nothing is updated in place.
type Snapshot struct {
	Records []Record
	Vectors [][]float64
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Empty reports whether the snapshot holds no usable context. A nil
// snapshot (never ingested) and a zero-record snapshot (all sources failed)
// are treated the same way.
func (s *Snapshot) Empty() bool { return s.Len() == 0 }

// Embedder converts free text into fixed-dimensionality numeric vectors.
// Single-text and batch calls must produce identical vectors for identical
// input, so corpus vectors and query vectors stay comparable.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension returns the vector dimensionality, or 0 if not yet known
	// (remote embedders detect it on the first call).
	Dimension() int
}

// Generator obtains a natural-language completion from an external
// generative model given a system instruction and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
