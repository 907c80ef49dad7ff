package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config is parsed from the environment once at startup and passed by value
// from main. Nothing reads the environment after that.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8001"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"portfolio.db"`

	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llama3:instruct"`

	ChatRateLimit  int           `env:"CHAT_RATE_LIMIT" envDefault:"20"`
	ChatRateWindow time.Duration `env:"CHAT_RATE_WINDOW" envDefault:"1m"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	BlogFeedURL string `env:"BLOG_FEED_URL" envDefault:"https://kimbob-world.tistory.com/rss"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.LLMProvider != ProviderOpenAI && cfg.LLMProvider != ProviderOllama {
		return cfg, fmt.Errorf("unknown LLM_PROVIDER %q, expected %q or %q", cfg.LLMProvider, ProviderOpenAI, ProviderOllama)
	}

	return cfg, nil
}
