package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/retry"
)

// AnthropicConfig holds configuration for the Anthropic messages API.
type AnthropicConfig struct {
	Endpoint  string // Optional base URL override
	Model     string
	APIKey    string
	MaxTokens int
}

// AnthropicCompleter requests completions from the Anthropic messages API.
type AnthropicCompleter struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	retry     *retry.Config
	logger    *zap.Logger
}

var _ Completer = (*AnthropicCompleter)(nil)

// NewAnthropicCompleter creates a completer for the Anthropic API.
func NewAnthropicCompleter(cfg AnthropicConfig, logger *zap.Logger) (*AnthropicCompleter, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	return &AnthropicCompleter{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		retry:     retry.DefaultConfig(),
		logger:    logger.Named("anthropic"),
	}, nil
}

// Complete implements Completer and returns the first text block of the reply.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := retry.DoIfRetryable(ctx, c.retry, func() (anthropic.MessagesResponse, error) {
		resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			MaxTokens: c.maxTokens,
			Messages: []anthropic.Message{
				{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
					{Type: "text", Text: &prompt},
				}},
			},
		})
		if err != nil {
			llmErr := ClassifyError(err)
			llmErr.Model = c.model
			return resp, llmErr
		}
		return resp, nil
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	text := firstText(resp)
	if strings.TrimSpace(text) == "" {
		return "", emptyResponse(c.model)
	}

	c.logger.Debug("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Model implements Completer.
func (c *AnthropicCompleter) Model() string {
	return c.model
}

func firstText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
