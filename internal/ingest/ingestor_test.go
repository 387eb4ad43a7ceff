package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns a fixed-size vector per text; optionally fails.
type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Name() string   { return "stub" }
func (s *stubEmbedder) Dimension() int { return 2 }

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = []float64{float64(len(text)), 1}
	}
	return out, nil
}

func newCorpusServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<h1>About</h1><p>We build exchanges.</p>"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/culture", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<h2>Culture</h2><p>Move fast.</p>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIngest_SkipsFailedSource(t *testing.T) {
	srv := newCorpusServer(t)
	emb := &stubEmbedder{}
	in := New(NewFetcher(), emb, 0, slog.Default())

	snap, err := in.Ingest(context.Background(), []string{
		srv.URL + "/about",
		srv.URL + "/broken",
		srv.URL + "/culture",
	})
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())
	assert.Len(t, snap.Vectors, 2)
	assert.Equal(t, srv.URL+"/about", snap.Records[0].Source)
	assert.Equal(t, srv.URL+"/culture", snap.Records[1].Source)
	assert.Equal(t, "About We build exchanges.", snap.Records[0].Text)
	assert.Equal(t, 1, emb.calls, "all records embedded in one batch")
}

func TestIngest_AllSourcesFailed(t *testing.T) {
	srv := newCorpusServer(t)
	emb := &stubEmbedder{}
	in := New(NewFetcher(), emb, 0, slog.Default())

	snap, err := in.Ingest(context.Background(), []string{srv.URL + "/broken", srv.URL + "/missing"})
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Zero(t, emb.calls, "nothing to embed for an empty corpus")
}

func TestIngest_EmbeddingFailureIsHard(t *testing.T) {
	srv := newCorpusServer(t)
	emb := &stubEmbedder{err: errors.New("quota exceeded")}
	in := New(NewFetcher(), emb, 0, slog.Default())

	snap, err := in.Ingest(context.Background(), []string{srv.URL + "/about"})
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.Contains(t, err.Error(), "embed corpus")
}

func TestIngest_TruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("слово ", 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>" + long + "</p>"))
	}))
	defer srv.Close()

	in := New(NewFetcher(), &stubEmbedder{}, 20, slog.Default())
	snap, err := in.Ingest(context.Background(), []string{srv.URL})
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Len(t, []rune(snap.Records[0].Text), 20)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "при", truncateRunes("привет", 3))
	assert.Equal(t, "hi", truncateRunes("hi", 10))
}
