package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProviderDispatch(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProviderConfig
		want interface{}
	}{
		{"openai", ProviderConfig{Vendor: VendorOpenAI, APIKey: "k"}, &OpenAIProvider{}},
		{"anthropic", ProviderConfig{Vendor: VendorAnthropic, APIKey: "k"}, &AnthropicProvider{}},
		{"google", ProviderConfig{Vendor: VendorGoogle, APIKey: "k"}, &GoogleProvider{}},
		{"deepseek", ProviderConfig{Vendor: VendorDeepSeek, APIKey: "k"}, &DeepSeekProvider{}},
		{"azure", ProviderConfig{Vendor: VendorAzureOpenAI, APIKey: "k", BaseURL: "https://example.openai.azure.com"}, &AzureOpenAIProvider{}},
		{"custom", ProviderConfig{Vendor: "my-proxy", APIKey: "k", BaseURL: "https://llm.internal/v1"}, &CustomProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateProvider(tt.cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestCreateProviderRequiresAPIKey(t *testing.T) {
	_, err := CreateProvider(ProviderConfig{Vendor: VendorOpenAI})
	require.Error(t, err)
	assert.Equal(t, ErrKindConfig, KindOf(err))
}

func TestCreateProviderCustomRequiresBaseURL(t *testing.T) {
	_, err := CreateProvider(ProviderConfig{Vendor: "my-proxy", APIKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindConfig, KindOf(err))

	_, err = CreateProvider(ProviderConfig{Vendor: VendorAzureOpenAI, APIKey: "k"})
	require.Error(t, err)
	assert.Equal(t, ErrKindConfig, KindOf(err))
}

func TestStubProvidersReturnConfigErrors(t *testing.T) {
	for _, vendor := range []string{VendorGoogle, VendorAzureOpenAI} {
		t.Run(vendor, func(t *testing.T) {
			cfg := ProviderConfig{Vendor: vendor, APIKey: "k", BaseURL: "https://example.com"}
			p, err := CreateProvider(cfg)
			require.NoError(t, err)

			_, err = p.ChatCompletion(context.Background(), []ChatMessage{UserMessage("hi")}, "m", false)
			require.Error(t, err)
			assert.Equal(t, ErrKindConfig, KindOf(err))

			// The static model catalog stays available regardless.
			models, err := p.ListModels(context.Background())
			require.NoError(t, err)
			assert.NotEmpty(t, models)
		})
	}
}
