// Package retrieval finds the corpus records most similar to a query.
// The corpus is small (low hundreds of records at most), so a brute-force
// scan over a snapshot's vectors is all that is needed. If the corpus ever
// grows beyond that, this should be replaced by an approximate
// nearest-neighbor structure.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"orgbot/internal/domain"
)

// Separator joins the selected records' texts in the returned context.
const Separator = "\n\n"

// Retriever embeds queries and scores them against snapshot vectors.
type Retriever struct {
	embedder domain.Embedder
}

// New creates a Retriever using the given embedder. It must be the same
// embedder that produced the snapshot's vectors, or similarity scores are
// meaningless.
func New(embedder domain.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Context returns the texts of the topK records most similar to the query,
// in descending-similarity order, joined by Separator. An empty snapshot
// yields an empty string; that is a normal outcome, not an error. topK is
// clamped to the number of available records.
func (r *Retriever) Context(ctx context.Context, query string, snap *domain.Snapshot, topK int) (string, error) {
	if snap.Empty() {
		return "", nil
	}
	if topK < 1 {
		topK = 1
	}
	qv, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	scores := make([]float64, snap.Len())
	for i, v := range snap.Vectors {
		scores[i] = dot(qv, v)
	}

	// Stable sort keeps original record order on equal scores.
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })

	if topK > len(idxs) {
		topK = len(idxs)
	}
	texts := make([]string, 0, topK)
	for _, i := range idxs[:topK] {
		texts = append(texts, snap.Records[i].Text)
	}
	return strings.Join(texts, Separator), nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
