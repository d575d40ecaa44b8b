package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// openAIClient talks to the OpenAI chat completions API.
type openAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

func newOpenAIClient(apiKey, model string, temperature float64, maxTokens int) *openAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	return &openAIClient{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// newOpenAIClientWithBaseURL points the client at an alternate endpoint.
// Used by tests to target a local fake server.
func newOpenAIClientWithBaseURL(apiKey, model, baseURL string, temperature float64, maxTokens int) *openAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	return &openAIClient{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *openAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
