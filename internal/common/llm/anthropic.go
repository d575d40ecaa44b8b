package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicClient talks to the Anthropic messages API.
type anthropicClient struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int64
}

func newAnthropicClient(apiKey, model string, temperature float64, maxTokens int) *anthropicClient {
	return &anthropicClient{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       anthropic.Model(model),
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}
}

// newAnthropicClientWithBaseURL points the client at an alternate endpoint.
// Used by tests to target a local fake server.
func newAnthropicClientWithBaseURL(apiKey, model, baseURL string, temperature float64, maxTokens int) *anthropicClient {
	return &anthropicClient{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:       anthropic.Model(model),
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}
}

func (c *anthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic completion: no text content in response")
}
