// Package gemini wraps the Gemini API behind the text-generation port.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/minseokang/matjip/internal/pkg/metrics"
	"github.com/minseokang/matjip/internal/pkg/pacing"
)

// Client generates text with a Gemini model. The client paces its own
// calls; Gemini free-tier quotas are per-minute and the enrichment
// pipeline would otherwise burst through them.
type Client struct {
	cli   *genai.Client
	model string
	pacer *pacing.Pacer
}

// New creates a Gemini client. gap spaces consecutive generation calls.
func New(ctx context.Context, apiKey, model string, gap time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{
		cli:   cli,
		model: model,
		pacer: pacing.New(gap),
	}, nil
}

// Generate sends one prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.cli.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, nil)
	metrics.ObserveProvider(metrics.ProviderGemini, start, err)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	if len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
