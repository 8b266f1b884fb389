package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/config"
)

// NewCompleter builds the completer selected by cfg.Provider. The warehouse
// querier is only used by the Cortex provider.
func NewCompleter(cfg config.LLMConfig, querier warehouse.Querier, logger *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case config.LLMProviderCortex, "":
		return NewCortexCompleter(querier, cfg.Model, logger), nil
	case config.LLMProviderOpenAI:
		return NewOpenAICompleter(OpenAIConfig{
			Endpoint:  config.ResolveURLForContainer(cfg.BaseURL),
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			MaxTokens: cfg.MaxTokens,
		}, logger)
	case config.LLMProviderAnthropic:
		return NewAnthropicCompleter(AnthropicConfig{
			Endpoint:  cfg.BaseURL,
			Model:     cfg.Model,
			APIKey:    cfg.APIKey,
			MaxTokens: cfg.MaxTokens,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
