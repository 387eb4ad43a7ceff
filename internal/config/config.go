package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// CorpusConfig lists the source pages and how they are refreshed.
type CorpusConfig struct {
	Sources          []string `yaml:"sources"`
	MaxDocumentRunes int      `yaml:"max_document_runes"`
	// RefreshIntervalMins, when > 0, re-ingests the corpus periodically.
	RefreshIntervalMins int `yaml:"refresh_interval_mins"`
}

// FetchConfig bounds the per-source HTTP fetch.
type FetchConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// GeneratorConfig configures the generative model call and the fixed
// persona/fallback texts around it.
type GeneratorConfig struct {
	BaseURL      string  `yaml:"base_url"`
	APIKeyEnv    string  `yaml:"api_key_env"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	TimeoutSecs  int     `yaml:"timeout_secs"`
	SystemPrompt string  `yaml:"system_prompt"`
	Fallback     string  `yaml:"fallback"`
}

// RetrievalConfig configures context retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// Topic is one /start menu button: a label shown to the user and the
// question it feeds into the pipeline when pressed.
type Topic struct {
	Label    string `yaml:"label"`
	Question string `yaml:"question"`
}

// TelegramConfig configures the Telegram front-end.
type TelegramConfig struct {
	TokenEnv        string  `yaml:"token_env"`
	PollTimeoutSecs int     `yaml:"poll_timeout_secs"`
	Greeting        string  `yaml:"greeting"`
	QuizTrigger     string  `yaml:"quiz_trigger"`
	Topics          []Topic `yaml:"topics,omitempty"`
}

// QuizConfig is the raw quiz question; validated by quiz.New at assembly.
type QuizConfig struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
	Answer   int      `yaml:"answer"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Quiz      QuizConfig      `yaml:"quiz"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if len(cfg.Corpus.Sources) == 0 {
		cfg.Corpus.Sources = []string{
			"https://coda.io/@latoken/latoken-talent/latoken-161",
			"https://deliver.latoken.com/hackathon",
			"https://latoken.me/culture-139",
		}
	}
	if cfg.Corpus.MaxDocumentRunes == 0 {
		cfg.Corpus.MaxDocumentRunes = 10000
	}
	if cfg.Fetch.TimeoutSecs == 0 {
		cfg.Fetch.TimeoutSecs = 10
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = 10 << 20
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gpt-4o"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.3
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 500
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	if cfg.Generator.SystemPrompt == "" {
		cfg.Generator.SystemPrompt = "Ты эксперт по компании Latoken. Отвечай на русском языке, используя предоставленный контекст."
	}
	if cfg.Generator.Fallback == "" {
		cfg.Generator.Fallback = "Извините, не удалось обработать запрос. Попробуйте ещё раз."
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 2
	}
	if cfg.Telegram.TokenEnv == "" {
		cfg.Telegram.TokenEnv = "TELEGRAM_TOKEN"
	}
	if cfg.Telegram.PollTimeoutSecs == 0 {
		cfg.Telegram.PollTimeoutSecs = 30
	}
	if cfg.Telegram.Greeting == "" {
		cfg.Telegram.Greeting = "Привет! Я бот Latoken. Могу ответить на вопросы о компании, хакатонах и корпоративной культуре."
	}
	if cfg.Telegram.QuizTrigger == "" {
		cfg.Telegram.QuizTrigger = "хочу квиз"
	}
	if len(cfg.Telegram.Topics) == 0 {
		cfg.Telegram.Topics = []Topic{
			{Label: "О компании", Question: "Расскажи о компании Latoken."},
			{Label: "Хакатоны", Question: "Расскажи про хакатоны Latoken."},
			{Label: "Корпоративная культура", Question: "Расскажи про корпоративную культуру Latoken."},
		}
	}
	if cfg.Quiz.Question == "" {
		cfg.Quiz.Question = "Какой актив Latoken запустил первым?"
		cfg.Quiz.Options = []string{"BTC", "ETH", "LA Token"}
		cfg.Quiz.Answer = 2
	}
}
