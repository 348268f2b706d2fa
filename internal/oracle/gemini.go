package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is a Client backed by the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	cfg    Config
}

// NewGeminiClient creates a Gemini client for cfg.Model.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

// Generate sends prompt to the model. A fresh model handle is built per call
// because generation settings live on the handle.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	s := c.cfg.settings(opts)
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(s.Temperature)
	model.SetMaxOutputTokens(s.MaxOutputTokens)
	if s.TopK > 0 {
		model.SetTopK(s.TopK)
	}
	if s.TopP > 0 {
		model.SetTopP(s.TopP)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoContent
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return nil, ErrNoContent
	}

	out := &Response{Text: b.String(), Usage: Usage{Model: c.cfg.Model}}
	if u := resp.UsageMetadata; u != nil {
		out.Usage.PromptTokens = int(u.PromptTokenCount)
		out.Usage.CompletionTokens = int(u.CandidatesTokenCount)
		out.Usage.TotalTokens = int(u.TotalTokenCount)
	}
	return out, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
