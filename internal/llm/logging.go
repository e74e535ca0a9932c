package llm

import (
	"context"
	"log/slog"
	"time"
)

type logged struct {
	next   Provider
	logger *slog.Logger
}

// WithLogging logs each completion at Debug and each failure at Warn.
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &logged{next: p, logger: logger}
}

func (l *logged) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	start := time.Now()
	c, err := l.next.Complete(ctx, p)

	attrs := []any{"provider", l.next.Name(), "latency_ms", time.Since(start).Milliseconds()}
	if err != nil {
		l.logger.Warn("LLM request failed", append(attrs, "error", err)...)
		return nil, err
	}
	l.logger.Debug("LLM request completed", append(attrs,
		"input_tokens", c.InputTokens,
		"output_tokens", c.OutputTokens,
		"truncated", c.Truncated)...)
	return c, nil
}

func (l *logged) Name() string { return l.next.Name() }
