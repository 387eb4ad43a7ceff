package answer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// echoGenerator returns the user prompt it received.
type echoGenerator struct {
	lastSystem string
}

func (g *echoGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.lastSystem = system
	return user, nil
}

// failingGenerator always fails.
type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("model unavailable")
}

func TestAnswer_EmbedsQuestionAndContext(t *testing.T) {
	gen := &echoGenerator{}
	s := New(gen, "отвечай кратко", "fallback", slog.Default())

	got := s.Answer(context.Background(), "Когда хакатон?", "Хакатон в марте.")
	assert.Contains(t, got, "Вопрос: Когда хакатон?")
	assert.Contains(t, got, "Контекст:\nХакатон в марте.")
	assert.Equal(t, "отвечай кратко", gen.lastSystem)
}

func TestAnswer_NeverFails(t *testing.T) {
	s := New(failingGenerator{}, "system", "Извините, не удалось обработать запрос.", slog.Default())

	got := s.Answer(context.Background(), "q", "ctx")
	assert.Equal(t, "Извините, не удалось обработать запрос.", got)
}

func TestAnswer_EmptyContextStillAnswered(t *testing.T) {
	s := New(&echoGenerator{}, "system", "fallback", slog.Default())

	got := s.Answer(context.Background(), "q", "")
	assert.Contains(t, got, "Вопрос: q")
}
