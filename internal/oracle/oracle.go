// Package oracle talks to the generative-text model that produces nutrition
// analyses and meal plans.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoContent is returned when the model answers without any text.
var ErrNoContent = errors.New("no content generated")

// Client sends a prompt to a text model and returns its raw answer.
type Client interface {
	Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error)
	Close() error
}

type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Response is the untrusted text the model produced.
type Response struct {
	Text   string
	Usage  Usage
	Cached bool
}

// CallSettings are the generation parameters for a single request.
type CallSettings struct {
	Temperature     float32
	MaxOutputTokens int32
	TopK            int32
	TopP            float32
}

type CallOption func(*CallSettings)

// WithTemperature overrides the configured sampling temperature.
func WithTemperature(t float32) CallOption {
	return func(s *CallSettings) { s.Temperature = t }
}

// WithMaxOutputTokens overrides the configured output token limit.
func WithMaxOutputTokens(n int32) CallOption {
	return func(s *CallSettings) { s.MaxOutputTokens = n }
}

func (c Config) settings(opts []CallOption) CallSettings {
	s := CallSettings{
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
		TopK:            c.TopK,
		TopP:            c.TopP,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// New builds the client described by cfg. Demo mode yields a StubClient; any
// other configuration needs an API key.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DemoMode {
		logger.Warn("oracle running in demo mode, responses are canned")
		return NewStubClient(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}
	logger.Info("oracle client ready", zap.String("model", cfg.Model))
	return client, nil
}
