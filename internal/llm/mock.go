package llm

import (
	"context"
	"sync"
)

// MockResponse is one scripted reply: Text, or Err when set.
type MockResponse struct {
	Text string
	Err  error
}

// MockProvider replays scripted replies in order and records prompts.
// With Echo set, an exhausted script yields a fixed follow-up question
// instead of an error, which lets the server run without credentials.
type MockProvider struct {
	mu      sync.Mutex
	script  []MockResponse
	Prompts []Prompt
	Echo    bool
}

// NewMockProvider creates a MockProvider with the given script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Complete(_ context.Context, p Prompt) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, p)
	if len(m.script) == 0 {
		if m.Echo {
			return &Completion{Text: "What would you do differently next time?"}, nil
		}
		return nil, &ProviderError{Provider: ProviderMock, Err: ErrEmptyCompletion}
	}

	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Completion{Text: next.Text}, nil
}

func (m *MockProvider) Name() string { return ProviderMock }

// CallCount returns the number of Complete calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
