package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/marketpulse/internal/model"
)

// NewProvider creates a rate-limited provider based on configuration
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "openai":
		p, err = NewOpenAIProvider(config)

	case "anthropic", "claude":
		p, err = NewAnthropicProvider(config)

	case "ollama":
		p, err = NewOllamaProvider(config)

	case "gemini":
		p, err = NewGeminiProvider(ctx, config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured (supported: openai, anthropic, ollama, gemini)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewLimitedProvider(p, config.RequestsPerMinute), nil
}

// ConfigFromModel converts the model config sections into an llm.Config.
// Missing API keys and base URLs are filled from the environment.
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	cfg := Config{
		Provider:          llmConfig.Provider,
		Model:             llmConfig.Model,
		APIKey:            llmConfig.APIKey,
		BaseURL:           llmConfig.BaseURL,
		Timeout:           llmConfig.Timeout,
		JSONMode:          llmConfig.JSONMode,
		RequestsPerMinute: llmConfig.RequestsPerMinute,
		HTTPProxy:         httpConfig.HTTPProxy,
		HTTPSProxy:        httpConfig.HTTPSProxy,
		NoProxy:           httpConfig.NoProxy,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = APIKeyFromEnv(cfg.Provider)
	}
	if cfg.BaseURL == "" && strings.EqualFold(cfg.Provider, "ollama") {
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg
}

// APIKeyFromEnv returns the conventional API key variable for a provider
func APIKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}
