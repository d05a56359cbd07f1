package llm

import "context"

// AzureOpenAIProvider is a placeholder. Azure deployments need a different
// endpoint scheme (deployment name in the path, api-version query, key
// header); until that is built every call fails deterministically with a
// configuration error.
type AzureOpenAIProvider struct {
	cfg ProviderConfig
}

func NewAzureOpenAIProvider(cfg ProviderConfig) *AzureOpenAIProvider {
	return &AzureOpenAIProvider{cfg: cfg}
}

func (p *AzureOpenAIProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error) {
	return nil, NewError(ErrKindConfig, "azure openai provider not yet implemented")
}

func (p *AzureOpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return []ModelInfo{
		{
			ID: "gpt-4", Name: "GPT-4", Vendor: VendorAzureOpenAI,
			ContextLength: 8192, MaxTokens: 4096,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
		{
			ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Vendor: VendorAzureOpenAI,
			ContextLength: 128000, MaxTokens: 4096,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
		{
			ID: "gpt-35-turbo", Name: "GPT-3.5 Turbo", Vendor: VendorAzureOpenAI,
			ContextLength: 16385, MaxTokens: 4096,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
	}, nil
}

func (p *AzureOpenAIProvider) TestConnection(ctx context.Context) error {
	return NewError(ErrKindConfig, "azure openai connection test not yet implemented")
}
