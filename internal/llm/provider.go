package llm

import (
	"context"
	"strings"
	"time"
)

// Provider defines the interface for generative model backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the model's text. Transport failures,
	// including an empty choice list, are returned as *TransportError.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one model call
type CompletionRequest struct {
	Prompt string
	System string

	// Model is the specific model to use (empty = provider config)
	Model string

	Temperature float32
	MaxTokens   int

	// JSONMode asks the backend for a JSON object response where supported
	JSONMode bool
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout bounds each API request
	Timeout time.Duration

	JSONMode bool

	// RequestsPerMinute paces calls (0 = unlimited)
	RequestsPerMinute int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "openai",
		Timeout:           60 * time.Second,
		JSONMode:          true,
		RequestsPerMinute: 60,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

// Invoke is the prompt-in, text-out helper used by the pipeline stages.
// opts carries the explicit per-stage parameters; its Prompt field is overwritten.
func Invoke(ctx context.Context, p Provider, prompt string, opts CompletionRequest) (*CompletionResponse, error) {
	opts.Prompt = prompt
	resp, err := p.Complete(ctx, opts)
	if err != nil {
		return nil, err
	}
	resp.Text = strings.TrimSpace(resp.Text)
	return resp, nil
}
