package llm

import "context"

// GoogleProvider is a placeholder. Gemini does not speak the OpenAI wire
// format and the integration has not been built; every call fails
// deterministically with a configuration error rather than panicking or
// blocking.
type GoogleProvider struct {
	cfg ProviderConfig
}

func NewGoogleProvider(cfg ProviderConfig) *GoogleProvider {
	return &GoogleProvider{cfg: cfg}
}

func (p *GoogleProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error) {
	return nil, NewError(ErrKindConfig, "google provider not yet implemented")
}

func (p *GoogleProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return []ModelInfo{
		{
			ID: "gemini-pro", Name: "Gemini Pro", Vendor: VendorGoogle,
			ContextLength: 30720, MaxTokens: 2048,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
		{
			ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Vendor: VendorGoogle,
			ContextLength: 1000000, MaxTokens: 8192,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
	}, nil
}

func (p *GoogleProvider) TestConnection(ctx context.Context) error {
	return NewError(ErrKindConfig, "google connection test not yet implemented")
}
