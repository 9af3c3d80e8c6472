// File path: internal/config/config.go

// Package config loads service configuration from an optional YAML file with
// environment variable overrides. API keys are never stored in the file; the
// config names the environment variables that carry them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/november7/memberbot/internal/llm"
)

// LLMConfig configures the chat and embedding endpoints. The two may differ:
// the answer model typically runs on a Groq-compatible API while embeddings
// come from the OpenAI API.
type LLMConfig struct {
	ChatBaseURL    string  `yaml:"chat_base_url"`
	ChatAPIKeyEnv  string  `yaml:"chat_api_key_env"`
	ChatModel      string  `yaml:"chat_model"`
	EmbedBaseURL   string  `yaml:"embed_base_url"`
	EmbedAPIKeyEnv string  `yaml:"embed_api_key_env"`
	EmbedModel     string  `yaml:"embed_model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
}

// RetrievalConfig tunes nearest-neighbor retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// Config is the root configuration.
type Config struct {
	Addr         string          `yaml:"addr"`
	MessagesURL  string          `yaml:"messages_url"`
	MessagesPath string          `yaml:"messages_path"`
	CatalogPath  string          `yaml:"catalog_path"`
	LLM          LLMConfig       `yaml:"llm"`
	Retrieval    RetrievalConfig `yaml:"retrieval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		MessagesURL:  "https://november7-730026606190.europe-west1.run.app/messages",
		MessagesPath: "data/messages.json",
		CatalogPath:  "data/catalog.db",
		LLM: LLMConfig{
			ChatBaseURL:    "https://api.groq.com/openai/v1",
			ChatAPIKeyEnv:  "GROQ_API_KEY",
			ChatModel:      "llama-3.1-8b-instant",
			EmbedAPIKeyEnv: "OPENAI_API_KEY",
			EmbedModel:     "text-embedding-3-small",
			Temperature:    0.3,
			MaxTokens:      150,
			TimeoutSecs:    10,
		},
		Retrieval: RetrievalConfig{TopK: 5},
	}
}

// Load reads the config file at path (defaults apply when path is empty or
// the file does not exist), then overlays environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if cfg.Retrieval.TopK < 1 {
		return Config{}, fmt.Errorf("retrieval top_k must be at least 1, got %d", cfg.Retrieval.TopK)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_MESSAGES_URL")); v != "" {
		cfg.MessagesURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_MESSAGES_PATH")); v != "" {
		cfg.MessagesPath = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_CATALOG_PATH")); v != "" {
		cfg.CatalogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_CHAT_MODEL")); v != "" {
		cfg.LLM.ChatModel = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_EMBED_MODEL")); v != "" {
		cfg.LLM.EmbedModel = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMBERBOT_TOP_K")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.TopK = parsed
		}
	}
}

// GenerationTimeout returns the per-call deadline for the answer model.
func (c Config) GenerationTimeout() time.Duration {
	if c.LLM.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

// ProviderOptions resolves API keys from the configured environment variables
// and returns ready-to-use provider options.
func (c Config) ProviderOptions() llm.Options {
	return llm.Options{
		ChatBaseURL:  c.LLM.ChatBaseURL,
		ChatAPIKey:   os.Getenv(c.LLM.ChatAPIKeyEnv),
		ChatModel:    c.LLM.ChatModel,
		EmbedBaseURL: c.LLM.EmbedBaseURL,
		EmbedAPIKey:  os.Getenv(c.LLM.EmbedAPIKeyEnv),
		EmbedModel:   c.LLM.EmbedModel,
		Temperature:  c.LLM.Temperature,
		MaxTokens:    c.LLM.MaxTokens,
	}
}
