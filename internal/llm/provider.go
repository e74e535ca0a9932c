// Package llm wraps text-generation providers behind a single interface and
// exposes a best-effort Generator that never fails its caller.
package llm

import "context"

// Provider completes a single-turn prompt.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)

	// Name identifies the backend and model, e.g. "openai:gpt-4o-mini".
	Name() string
}

// Prompt is one interviewer request: a system frame plus the user text.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion is the provider's answer to a Prompt.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int

	// Truncated is set when generation stopped at MaxTokens.
	Truncated bool
}
