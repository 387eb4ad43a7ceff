package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"orgbot/internal/answer"
	"orgbot/internal/config"
	"orgbot/internal/domain"
	"orgbot/internal/embedding/openai"
	"orgbot/internal/embedding/tfidf"
	"orgbot/internal/generation"
	"orgbot/internal/ingest"
	"orgbot/internal/retrieval"
	"orgbot/internal/service"
	"orgbot/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	// Keep stderr clean for the TUI; logs go to a file when requested.
	logW := os.Stderr
	if path := os.Getenv("ORGBOT_LOG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			logW = f
			defer f.Close()
		}
	}
	logger := slog.New(slog.NewTextHandler(logW, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to assemble engine: %v\n", err)
		os.Exit(1)
	}

	refreshCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := engine.Refresh(refreshCtx); err != nil {
		logger.Error("initial refresh failed", "error", err)
	}
	cancel()

	status := fmt.Sprintf("Corpus ready: %d records. Type a question.", engine.Snapshot().Len())
	m := tui.New(engine, status)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func buildEngine(cfg *config.AppConfig, logger *slog.Logger) (*service.Engine, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.New()
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		emb = client
	default:
		return nil, errors.New("unknown embedder: " + cfg.Embedder.Type)
	}

	fetcher := ingest.NewFetcher(
		ingest.WithUserAgent(cfg.Fetch.UserAgent),
		ingest.WithTimeout(time.Duration(cfg.Fetch.TimeoutSecs)*time.Second),
		ingest.WithMaxBodyBytes(cfg.Fetch.MaxBodyBytes),
	)
	ingestor := ingest.New(fetcher, emb, cfg.Corpus.MaxDocumentRunes, logger)
	retriever := retrieval.New(emb)

	gen, err := generation.NewClient(generation.Config{
		BaseURL:     cfg.Generator.BaseURL,
		APIKeyEnv:   cfg.Generator.APIKeyEnv,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		Timeout:     time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	synth := answer.New(gen, cfg.Generator.SystemPrompt, cfg.Generator.Fallback, logger)

	return service.NewEngine(ingestor, retriever, synth, cfg.Corpus.Sources, cfg.Retrieval.TopK, logger), nil
}
