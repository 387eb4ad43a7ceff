// Package answer turns a question and retrieved context into a grounded
// natural-language reply.
package answer

import (
	"context"
	"fmt"
	"log/slog"

	"orgbot/internal/domain"
)

// Synthesizer assembles a grounded prompt and obtains an answer from the
// generative model. It never surfaces an error to its caller: every failure
// path resolves to the fixed fallback text, which has the same shape as a
// successful answer.
type Synthesizer struct {
	gen      domain.Generator
	system   string
	fallback string
	logger   *slog.Logger
}

// New creates a Synthesizer. system is the fixed persona/output-language
// instruction; fallback is the user-safe text substituted on any failure.
func New(gen domain.Generator, system, fallback string, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{gen: gen, system: system, fallback: fallback, logger: logger}
}

// Answer builds the prompt from the raw question and the retrieved context
// and returns the model's reply, or the fallback text if the call fails.
func (s *Synthesizer) Answer(ctx context.Context, question, contextText string) string {
	user := fmt.Sprintf("Вопрос: %s\n\nКонтекст:\n%s", question, contextText)
	text, err := s.gen.Generate(ctx, s.system, user)
	if err != nil {
		s.logger.Error("answer generation failed", "error", err)
		return s.fallback
	}
	return text
}
