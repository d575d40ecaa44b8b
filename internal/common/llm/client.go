// Package llm provides the completion clients used by the pipeline stages.
// Providers sit behind a single Client interface so stages never care which
// vendor is configured.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"data-copilot/internal/common/config"
	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/logger"
	"data-copilot/internal/common/metrics"
)

// Client is the interface for interacting with an LLM.
type Client interface {
	// Complete sends a system and user prompt and returns the response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New builds a provider client from configuration. The temperature overrides
// the config default when non-negative, so each stage can run at its own.
func New(cfg config.LLMConfig, temperature float64) (Client, error) {
	temp := cfg.Temperature
	if temperature >= 0 {
		temp = temperature
	}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai api key is not configured")
		}
		return newOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, temp, cfg.MaxTokens), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic api key is not configured")
		}
		return newAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, temp, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

// retryingClient wraps a Client with per-stage timeout and exponential backoff.
type retryingClient struct {
	inner      Client
	stage      string
	timeout    time.Duration
	maxRetries int
	logger     logger.Logger
}

// WithRetry wraps c so that each Complete call runs under timeout and retries
// transient failures up to maxRetries times with exponential backoff.
// Context expiry is never retried.
func WithRetry(c Client, stage string, timeout time.Duration, maxRetries int, log logger.Logger) Client {
	return &retryingClient{
		inner:      c,
		stage:      stage,
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     log.With(map[string]interface{}{"stage": stage}),
	}
}

func (r *retryingClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.LLMCalls.WithLabelValues(r.stage, "timeout").Inc()
				return "", apperrors.NewLLMTimeoutError(r.stage)
			}
		}

		response, err := r.inner.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			metrics.LLMCalls.WithLabelValues(r.stage, "success").Inc()
			return response, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			metrics.LLMCalls.WithLabelValues(r.stage, "timeout").Inc()
			return "", apperrors.NewLLMTimeoutError(r.stage)
		}

		lastErr = err
		r.logger.Warn("llm call failed, retrying", map[string]interface{}{
			"attempt":    attempt + 1,
			"maxRetries": r.maxRetries,
			"error":      err.Error(),
		})
	}

	metrics.LLMCalls.WithLabelValues(r.stage, "error").Inc()
	return "", apperrors.NewLLMCallFailedError(r.stage, lastErr)
}
