package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/retry"
)

// OpenAIConfig holds configuration for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	Endpoint  string // Base URL; empty uses api.openai.com
	Model     string // Model name, e.g., "gpt-4o-mini"
	APIKey    string // Optional for local endpoints
	MaxTokens int
}

// OpenAICompleter requests JSON-mode chat completions from an OpenAI-compatible API.
type OpenAICompleter struct {
	client   *openai.Client
	endpoint string
	model    string
	maxTok   int
	retry    *retry.Config
	logger   *zap.Logger
}

var _ Completer = (*OpenAICompleter)(nil)

// NewOpenAICompleter creates a completer for an OpenAI-compatible endpoint.
func NewOpenAICompleter(cfg OpenAIConfig, logger *zap.Logger) (*OpenAICompleter, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAICompleter{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: clientConfig.BaseURL,
		model:    cfg.Model,
		maxTok:   cfg.MaxTokens,
		retry:    retry.DefaultConfig(),
		logger:   logger.Named("openai"),
	}, nil
}

// Complete implements Completer. The prompt already spells out the JSON
// contract; response_format asks the server to enforce it.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := retry.DoIfRetryable(ctx, c.retry, func() (openai.ChatCompletionResponse, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     c.model,
			MaxTokens: c.maxTok,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return resp, c.parseError(err)
		}
		return resp, nil
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", emptyResponse(c.model)
	}

	c.logger.Debug("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Model implements Completer.
func (c *OpenAICompleter) Model() string {
	return c.model
}

func (c *OpenAICompleter) parseError(err error) error {
	llmErr := ClassifyError(err)
	llmErr.Model = c.model
	llmErr.Endpoint = c.endpoint
	return llmErr
}
