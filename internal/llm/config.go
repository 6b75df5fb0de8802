package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds the single generation request. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string // Optional. Overrides the SDK endpoint.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-001"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-001",
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("PDFQUIZ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if t := os.Getenv("PDFQUIZ_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	setFromEnv(&cfg.Gemini.APIKey, "PDFQUIZ_GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "PDFQUIZ_GEMINI_MODEL")
	setFromEnv(&cfg.Gemini.BaseURL, "PDFQUIZ_GEMINI_BASE_URL")

	setFromEnv(&cfg.OpenAI.APIKey, "PDFQUIZ_OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "PDFQUIZ_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "PDFQUIZ_OPENAI_BASE_URL")

	setFromEnv(&cfg.Anthropic.APIKey, "PDFQUIZ_ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "PDFQUIZ_ANTHROPIC_MODEL")
	setFromEnv(&cfg.Anthropic.BaseURL, "PDFQUIZ_ANTHROPIC_BASE_URL")

	setFromEnv(&cfg.OpenRouter.APIKey, "PDFQUIZ_OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "PDFQUIZ_OPENROUTER_MODEL")
	setFromEnv(&cfg.OpenRouter.BaseURL, "PDFQUIZ_OPENROUTER_BASE_URL")

	return cfg
}

// vendorKeys are the providers' own API key variables, in discovery order.
var vendorKeys = []struct{ provider, env string }{
	{"gemini", "GEMINI_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"openrouter", "OPENROUTER_API_KEY"},
}

// apiKey returns the key field for provider, or nil for providers without one.
func (c *Config) apiKey(provider string) *string {
	switch provider {
	case "gemini":
		return &c.Gemini.APIKey
	case "openai":
		return &c.OpenAI.APIKey
	case "anthropic":
		return &c.Anthropic.APIKey
	case "openrouter":
		return &c.OpenRouter.APIKey
	}
	return nil
}

// LoadConfig builds the run configuration from PDFQUIZ_* variables.
// provider, when set, takes precedence over PDFQUIZ_LLM_PROVIDER.
//
// A named provider is never swapped for another, but its key may come from
// the vendor variable (e.g. OPENAI_API_KEY) when the PDFQUIZ_* key is unset.
// With no provider named and no usable PDFQUIZ_* key, the vendor variables
// are probed (Gemini, OpenAI, Anthropic, OpenRouter) and the first one found
// selects the provider. Models, base URLs and the timeout always come from
// PDFQUIZ_* or the defaults.
func LoadConfig(provider string) Config {
	cfg := ConfigFromEnv()
	named := os.Getenv("PDFQUIZ_LLM_PROVIDER") != ""
	if provider != "" {
		cfg.Provider = provider
		named = true
	}
	if cfg.Validate() == nil {
		return cfg
	}

	for _, v := range vendorKeys {
		if named && v.provider != cfg.Provider {
			continue
		}
		if k := os.Getenv(v.env); k != "" {
			cfg.Provider = v.provider
			*cfg.apiKey(v.provider) = k
			return cfg
		}
	}
	return cfg
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: PDFQUIZ_GEMINI_API_KEY or GEMINI_API_KEY is required for the gemini provider", ErrConfig)
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: PDFQUIZ_OPENAI_API_KEY or OPENAI_API_KEY is required for the openai provider", ErrConfig)
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%w: PDFQUIZ_ANTHROPIC_API_KEY or ANTHROPIC_API_KEY is required for the anthropic provider", ErrConfig)
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("%w: PDFQUIZ_OPENROUTER_API_KEY or OPENROUTER_API_KEY is required for the openrouter provider", ErrConfig)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("%w: unknown LLM provider %q", ErrConfig, c.Provider)
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
