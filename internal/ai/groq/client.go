// Package groq talks to Groq's OpenAI-compatible chat completions API. It
// backs both the query expander and the web link filter.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	baseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the fallback when the configured model is rejected
	// by the provider, a common misconfiguration.
	DefaultModel = "llama-3.1-8b-instant"

	defaultTimeout = 8 * time.Second
)

// Client wraps the completions API with the strict-JSON calling convention
// the pipeline relies on.
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient builds a Groq client. An empty model selects DefaultModel.
func NewClient(apiKey, model string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}, nil
}

func (c *Client) Model() string { return c.model }

// CompleteJSON sends a system+user prompt pair requesting a JSON object
// response and returns the raw message content. When the configured model is
// rejected (400/404) it retries once against DefaultModel.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, temperature float32) (string, error) {
	content, err := c.complete(ctx, c.model, system, user, temperature)
	if err == nil {
		return content, nil
	}

	var apiErr *openai.APIError
	if c.model != DefaultModel && errors.As(err, &apiErr) &&
		(apiErr.HTTPStatusCode == http.StatusBadRequest || apiErr.HTTPStatusCode == http.StatusNotFound) {
		c.logger.Warn("groq rejected configured model, retrying with default",
			zap.String("model", c.model),
			zap.Int("status", apiErr.HTTPStatusCode),
		)
		if content, retryErr := c.complete(ctx, DefaultModel, system, user, temperature); retryErr == nil {
			c.logger.Info("groq request succeeded after model fallback", zap.String("model", DefaultModel))
			return content, nil
		}
	}

	return "", err
}

func (c *Client) complete(ctx context.Context, model, system, user string, temperature float32) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   256,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
