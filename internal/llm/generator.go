package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultSystemPrompt frames the model as a terse interviewer.
const DefaultSystemPrompt = "You are an interviewer assistant that asks concise probing follow-up questions."

const (
	notConfiguredPrefix = "(LLM fallback - provider not configured) "
	failurePrefix       = "(LLM fallback) "
	fallbackPromptRunes = 400
)

// Result is the outcome of a best-effort generation. When FallbackUsed is
// set, Text is a deterministic placeholder derived from the prompt and Err
// holds the cause.
type Result struct {
	Text         string
	FallbackUsed bool
	Err          error
}

// Generator turns prompts into text and never fails its caller.
type Generator struct {
	provider    Provider
	system      string
	timeout     time.Duration
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// GeneratorOptions tunes a Generator.
type GeneratorOptions struct {
	System      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	Logger      *slog.Logger
}

// NewGenerator creates a Generator. A nil provider yields a generator that
// always returns the not-configured fallback.
func NewGenerator(p Provider, opts GeneratorOptions) *Generator {
	if opts.System == "" {
		opts.System = DefaultSystemPrompt
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 150
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{
		provider:    p,
		system:      opts.System,
		timeout:     opts.Timeout,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		logger:      opts.Logger,
	}
}

// NewGeneratorFromConfig builds the provider chain and Generator for cfg.
func NewGeneratorFromConfig(ctx context.Context, cfg Config, logger *slog.Logger) (*Generator, error) {
	p, err := NewProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewGenerator(p, GeneratorOptions{
		Timeout:     cfg.Timeout,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Logger:      logger,
	}), nil
}

// Configured reports whether a provider backs the generator.
func (g *Generator) Configured() bool {
	return g != nil && g.provider != nil
}

// Generate asks the provider for a completion of prompt within the
// configured timeout. Any failure yields a fallback Result.
func (g *Generator) Generate(ctx context.Context, prompt string) Result {
	if !g.Configured() {
		return Result{
			Text:         notConfiguredPrefix + promptExcerpt(prompt),
			FallbackUsed: true,
			Err:          ErrNotConfigured,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	c, err := g.provider.Complete(ctx, Prompt{
		System:      g.system,
		User:        prompt,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err == nil && strings.TrimSpace(c.Text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		g.logger.Debug("generation fell back", "provider", g.provider.Name(), "error", err)
		return Result{
			Text:         failurePrefix + promptExcerpt(prompt),
			FallbackUsed: true,
			Err:          err,
		}
	}

	return Result{Text: strings.TrimSpace(c.Text)}
}

func promptExcerpt(prompt string) string {
	r := []rune(prompt)
	if len(r) > fallbackPromptRunes {
		r = r[:fallbackPromptRunes]
	}
	return strings.ReplaceAll(string(r), "\n", " ")
}
