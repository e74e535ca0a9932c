package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, cfg GeminiConfig) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiProvider{client: client, model: cfg.Model}, nil
}

func (p *geminiProvider) Name() string { return ProviderGemini + ":" + p.model }

func (p *geminiProvider) Complete(ctx context.Context, pr Prompt) (*Completion, error) {
	config := &genai.GenerateContentConfig{MaxOutputTokens: int32(pr.MaxTokens)}
	if pr.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(pr.Temperature))
	}
	if pr.System != "" {
		config.SystemInstruction = genai.NewContentFromText(pr.System, genai.RoleUser)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(pr.User), config)
	if err != nil {
		return nil, upstreamError(ProviderGemini, geminiStatus(err), 0, err)
	}

	c := &Completion{Text: result.Text()}
	if len(result.Candidates) > 0 {
		c.Truncated = result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
	}
	if u := result.UsageMetadata; u != nil {
		c.InputTokens = int(u.PromptTokenCount)
		c.OutputTokens = int(u.CandidatesTokenCount)
	}
	return c, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
