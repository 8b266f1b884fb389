package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/config"
)

func TestNewCompleter(t *testing.T) {
	q := &fakeQuerier{}

	c, err := NewCompleter(config.LLMConfig{Provider: config.LLMProviderCortex, Model: "llama3.1-70b"}, q, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &CortexCompleter{}, c)
	assert.Equal(t, "llama3.1-70b", c.Model())

	c, err = NewCompleter(config.LLMConfig{Provider: config.LLMProviderOpenAI, Model: "gpt-4o-mini", APIKey: "k", MaxTokens: 100}, q, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompleter{}, c)

	c, err = NewCompleter(config.LLMConfig{Provider: config.LLMProviderAnthropic, Model: "claude-haiku-4-5", APIKey: "k", MaxTokens: 100}, q, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &AnthropicCompleter{}, c)

	_, err = NewCompleter(config.LLMConfig{Provider: "bard", Model: "x"}, q, zap.NewNop())
	assert.Error(t, err)
}
