package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider creates a Provider from configuration, wrapped as
// retry around logging around the backend. It returns (nil, nil) when no provider
// is configured.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderAnthropic:
		base, err = newAnthropic(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = newOpenAI(cfg.OpenAI)
	case ProviderGemini:
		base, err = newGemini(ctx, cfg.Gemini)
	case ProviderMock:
		m := NewMockProvider()
		m.Echo = true
		base = m
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, logger), cfg.RetryConfig()), nil
}
