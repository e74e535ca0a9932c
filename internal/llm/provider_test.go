package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *openAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := newOpenAI(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("newOpenAI: %v", err)
	}
	return p
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *anthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := newAnthropic(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku-4-5"}, option.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("newAnthropic: %v", err)
	}
	return p
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var gotRoles []string
	var gotSystem string
	handler := func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, m := range body.Messages {
			gotRoles = append(gotRoles, m.Role)
			if m.Role == "system" {
				gotSystem = m.Content
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": "How did you measure the latency win?",
					},
					"finish_reason": "length",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     40,
				"completion_tokens": 9,
				"total_tokens":      49,
			},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	c, err := p.Complete(context.Background(), Prompt{
		System:    DefaultSystemPrompt,
		User:      "Candidate answer: we cached it",
		MaxTokens: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Text != "How did you measure the latency win?" {
		t.Fatalf("unexpected text %q", c.Text)
	}
	if c.InputTokens != 40 || c.OutputTokens != 9 {
		t.Fatalf("unexpected usage %d/%d", c.InputTokens, c.OutputTokens)
	}
	if !c.Truncated {
		t.Fatal("expected finish_reason length to mark the completion truncated")
	}
	if gotSystem != DefaultSystemPrompt || strings.Join(gotRoles, ",") != "system,user" {
		t.Fatalf("unexpected messages: roles=%v system=%q", gotRoles, gotSystem)
	}
	if p.Name() != "openai:gpt-4o-mini" {
		t.Fatalf("Name() = %q", p.Name())
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{},
		})
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Complete(context.Background(), Prompt{MaxTokens: 10})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{"rate limit", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
		{"bad key", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": "nope"},
				})
			}
			p := newTestOpenAIProvider(t, handler)
			_, err := p.Complete(context.Background(), Prompt{MaxTokens: 10})

			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %T (%v)", err, err)
			}
			if pe.Status != tt.status || pe.Temporary() != tt.temporary {
				t.Fatalf("status=%d temporary=%v, want %d/%v", pe.Status, pe.Temporary(), tt.status, tt.temporary)
			}
		})
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Which tradeoffs "},
				{"type": "text", "text": "did you weigh?"},
			},
			"model":       "claude-haiku-4-5",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 8,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	c, err := p.Complete(context.Background(), Prompt{
		System:    DefaultSystemPrompt,
		User:      "Candidate answer: we sharded",
		MaxTokens: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Text != "Which tradeoffs did you weigh?" {
		t.Fatalf("unexpected text %q", c.Text)
	}
	if c.InputTokens != 50 || c.OutputTokens != 8 || c.Truncated {
		t.Fatalf("unexpected completion %+v", c)
	}
}

func TestAnthropicProvider_RateLimitCarriesRetryAfter(t *testing.T) {
	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "rate_limit_error",
				"message": "Rate limit exceeded",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Complete(context.Background(), Prompt{User: "test", MaxTokens: 100})

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got: %T (%v)", err, err)
	}
	if pe.Status != http.StatusTooManyRequests || !pe.Temporary() {
		t.Fatalf("unexpected classification %+v", pe)
	}
	if pe.RetryAfter != 3*time.Second {
		t.Fatalf("RetryAfter = %v, want 3s", pe.RetryAfter)
	}
	if calls != 1 {
		t.Fatalf("SDK retried internally: %d calls", calls)
	}
}

func TestUpstreamErrorPassesContextErrors(t *testing.T) {
	err := upstreamError(ProviderOpenAI, 0, 0, fmt.Errorf("post: %w", context.DeadlineExceeded))
	var pe *ProviderError
	if errors.As(err, &pe) {
		t.Fatalf("context error wrapped as ProviderError: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestProviderErrorTemporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		pe := &ProviderError{Provider: "x", Status: tt.status, Err: errors.New("e")}
		if got := pe.Temporary(); got != tt.want {
			t.Errorf("Temporary() for %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNewProvider_NoneReturnsNil(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderNone}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil provider, got %T", p)
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "cohere"}, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown LLM provider") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{Timeout: 1, MaxTokens: 1}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"none", func(c *Config) { c.Provider = ProviderNone }, false},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, false},
		{"openai without key", func(c *Config) { c.Provider = ProviderOpenAI }, true},
		{"openai with key", func(c *Config) { c.Provider = ProviderOpenAI; c.OpenAI.APIKey = "k" }, false},
		{"anthropic without key", func(c *Config) { c.Provider = ProviderAnthropic }, true},
		{"gemini without key", func(c *Config) { c.Provider = ProviderGemini }, true},
		{"unknown", func(c *Config) { c.Provider = "x" }, true},
		{"negative retries", func(c *Config) { c.Retries = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
