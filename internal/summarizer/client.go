// Package summarizer generates per-article and executive summaries via the
// Anthropic API.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Config holds Anthropic API configuration parameters.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

var ErrDisabled = errors.New("summarizer disabled")

// Client wraps the Anthropic SDK client for the two summarizer flavors.
type Client struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	model := anthropic.Model(strings.TrimSpace(cfg.Model))
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_0
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	client := anthropic.NewClient(option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	return &Client{
		client:    &client,
		model:     model,
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if maxTokens <= 0 || maxTokens > c.maxTokens {
		maxTokens = c.maxTokens
	}
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic empty response")
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}
