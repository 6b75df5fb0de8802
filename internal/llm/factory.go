package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewProvider creates a Provider from configuration. The configuration is
// validated first so a missing key fails before any network call. The
// returned provider logs each request to log; it never retries.
func NewProvider(ctx context.Context, cfg Config, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, log), nil
}
