package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"orgbot/internal/answer"
	"orgbot/internal/bot"
	"orgbot/internal/config"
	"orgbot/internal/domain"
	"orgbot/internal/embedding/openai"
	"orgbot/internal/embedding/tfidf"
	"orgbot/internal/generation"
	"orgbot/internal/ingest"
	"orgbot/internal/quiz"
	"orgbot/internal/retrieval"
	"orgbot/internal/service"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Error("failed to assemble engine", "error", err)
		os.Exit(1)
	}

	q, err := quiz.New(cfg.Quiz.Question, cfg.Quiz.Options, cfg.Quiz.Answer)
	if err != nil {
		logger.Error("invalid quiz config", "error", err)
		os.Exit(1)
	}

	token := os.Getenv(cfg.Telegram.TokenEnv)
	if token == "" {
		logger.Error("missing Telegram token", "env", cfg.Telegram.TokenEnv)
		os.Exit(1)
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("telegram auth failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Build the corpus before serving the first question. A failed initial
	// refresh is not fatal: the bot starts with an empty snapshot and the
	// next refresh can fill it.
	refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if err := engine.Refresh(refreshCtx); err != nil {
		logger.Error("initial refresh failed", "error", err)
	}
	cancel()

	if cfg.Corpus.RefreshIntervalMins > 0 {
		go engine.RunRefreshLoop(ctx, time.Duration(cfg.Corpus.RefreshIntervalMins)*time.Minute)
	}

	b := bot.New(api, engine, q, cfg.Telegram, logger)
	logger.Info("bot started", "username", api.Self.UserName)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped", "error", err)
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
