package anthropic

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultModel is the model used for enrichment prompts unless overridden.
const DefaultModel = "claude-haiku-4-5-20251001"

// Completer wraps a Client with a fixed model and generation settings,
// exposing a single-prompt convenience API for the enrichment stages.
type Completer struct {
	client      Client
	model       string
	maxTokens   int64
	temperature *float64
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithModel overrides the model used for completions.
func WithModel(model string) CompleterOption {
	return func(c *Completer) {
		c.model = model
	}
}

// WithMaxTokens overrides the response token budget.
func WithMaxTokens(n int64) CompleterOption {
	return func(c *Completer) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CompleterOption {
	return func(c *Completer) {
		c.temperature = &t
	}
}

// NewCompleter creates a Completer around client.
func NewCompleter(client Client, opts ...CompleterOption) *Completer {
	c := &Completer{
		client:    client,
		model:     DefaultModel,
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends a single user prompt and returns the text of the first
// text content block in the response.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessage(ctx, MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: complete")
	}

	resp.Usage.LogCost(c.model, "enrich")

	for _, block := range resp.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", eris.New("anthropic: response contained no text block")
}
