package llm

import (
	"context"
	"testing"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicBuildRequestHoistsSystemTurns(t *testing.T) {
	p := NewAnthropicProvider(ProviderConfig{Vendor: VendorAnthropic, APIKey: "k"})

	req := p.buildRequest([]ChatMessage{
		SystemMessage("You are terse."),
		UserMessage("hello"),
		AssistantMessage("hi"),
		SystemMessage("Stay on topic."),
		UserMessage("summarize"),
	}, "claude-3-haiku-20240307")

	assert.Equal(t, "You are terse.\n\nStay on topic.", req.System)
	require.Len(t, req.Messages, 3)
	assert.EqualValues(t, anthropic.RoleUser, req.Messages[0].Role)
	assert.EqualValues(t, anthropic.RoleAssistant, req.Messages[1].Role)
	assert.EqualValues(t, anthropic.RoleUser, req.Messages[2].Role)
	assert.Equal(t, anthropicMaxTokens, req.MaxTokens)
}

func TestMapAnthropicErrorStatusCodes(t *testing.T) {
	err := mapAnthropicError(&anthropic.RequestError{StatusCode: 401})
	assert.Equal(t, ErrKindAuth, err.Kind)

	err = mapAnthropicError(&anthropic.RequestError{StatusCode: 429})
	assert.Equal(t, ErrKindQuota, err.Kind)

	err = mapAnthropicError(assert.AnError)
	assert.Equal(t, ErrKindNetwork, err.Kind)
}

func TestAnthropicListModelsStaticCatalog(t *testing.T) {
	p := NewAnthropicProvider(ProviderConfig{Vendor: VendorAnthropic, APIKey: "k"})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, models)
	for _, m := range models {
		assert.Equal(t, VendorAnthropic, m.Vendor)
		assert.True(t, m.SupportsStreaming)
	}
}
