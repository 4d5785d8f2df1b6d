package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete marketpulse configuration
type Config struct {
	LLM        LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Extraction StageConfig    `yaml:"extraction" mapstructure:"extraction"`
	Advisory   StageConfig    `yaml:"advisory" mapstructure:"advisory"`
	Ingest     IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	HTTP       HTTPConfig     `yaml:"http" mapstructure:"http"`
	Cache      CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Fallback   FallbackConfig `yaml:"fallback" mapstructure:"fallback"`
	Log        LogConfig      `yaml:"log" mapstructure:"log"`
	Output     OutputConfig   `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects and configures the model provider
type LLMConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai anthropic claude ollama gemini"`
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"-" mapstructure:"api_key"` // Never written back to disk
	BaseURL  string        `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	JSONMode bool          `yaml:"json_mode" mapstructure:"json_mode"` // Ask the provider for a JSON object response when supported

	// RequestsPerMinute paces model calls (0 = unlimited)
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute" validate:"gte=0"`
}

// StageConfig holds the per-stage generation parameters passed explicitly to a stage
type StageConfig struct {
	Temperature float32 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gt=0"`
}

// IngestConfig controls document retrieval
type IngestConfig struct {
	Catalog         string `yaml:"catalog,omitempty" mapstructure:"catalog"`
	MaxDocuments    int    `yaml:"max_documents" mapstructure:"max_documents" validate:"gt=0"`
	MaxContentChars int    `yaml:"max_content_chars" mapstructure:"max_content_chars" validate:"gte=0"`
	Workers         int    `yaml:"workers" mapstructure:"workers" validate:"gt=0"`
}

// HTTPConfig configures live article fetching
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the fetched-document cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir,omitempty" mapstructure:"dir"` // Empty = memory only
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// FallbackConfig tunes the substitute values used when validation fails
type FallbackConfig struct {
	NeutralTrends int    `yaml:"neutral_trends" mapstructure:"neutral_trends" validate:"gte=0,lte=100"`
	NoDataText    string `yaml:"no_data_text" mapstructure:"no_data_text"`
	// FailOnFallback turns a validation fallback into a run error instead of degrading
	FailOnFallback bool `yaml:"fail_on_fallback" mapstructure:"fail_on_fallback"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// OutputConfig controls what a run writes
type OutputConfig struct {
	JSONPath string `yaml:"json_path" mapstructure:"json_path"` // "-" = stdout
	Debug    bool   `yaml:"debug" mapstructure:"debug"`         // Record prompts in the trace
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			Timeout:           60 * time.Second,
			JSONMode:          true,
			RequestsPerMinute: 60,
		},
		Extraction: StageConfig{Temperature: 0.1, MaxTokens: 2048},
		Advisory:   StageConfig{Temperature: 0.3, MaxTokens: 2048},
		Ingest: IngestConfig{
			MaxDocuments:    3,
			MaxContentChars: 6000,
			Workers:         4,
		},
		HTTP: HTTPConfig{
			Timeout:           20 * time.Second,
			UserAgent:         "MarketPulse/0.1 (+https://github.com/ppiankov/marketpulse)",
			MaxBodyBytes:      2_000_000,
			RequestsPerSecond: 1,
			RespectRobots:     true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Fallback: FallbackConfig{
			NeutralTrends: 50,
			NoDataText:    "No data available.",
		},
		Log: LogConfig{Level: "info"},
		Output: OutputConfig{
			JSONPath: "-",
		},
	}
}

var configValidator = validator.New()

// Validate checks field constraints declared on the config
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
