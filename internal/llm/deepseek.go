package llm

import "context"

// DeepSeekProvider delegates to the OpenAI adapter; the DeepSeek API is wire
// compatible. Only the vendor tag on model descriptors is post-processed.
type DeepSeekProvider struct {
	inner *OpenAIProvider
}

func NewDeepSeekProvider(cfg ProviderConfig) *DeepSeekProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL(VendorDeepSeek)
	}
	return &DeepSeekProvider{inner: NewOpenAIProvider(cfg)}
}

func (p *DeepSeekProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error) {
	return p.inner.ChatCompletion(ctx, messages, model, stream)
}

func (p *DeepSeekProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models, err := p.inner.ListModels(ctx)
	if err != nil {
		// The listing endpoint is flaky on some gateways; fall back to the
		// documented catalog.
		return []ModelInfo{
			{
				ID: "deepseek-chat", Name: "DeepSeek Chat (V3)", Vendor: VendorDeepSeek,
				ContextLength: 64000, MaxTokens: 8192,
				SupportsStreaming: true, SupportsFunctionCalling: true,
			},
			{
				ID: "deepseek-reasoner", Name: "DeepSeek Reasoner (R1)", Vendor: VendorDeepSeek,
				ContextLength: 64000, MaxTokens: 8192,
				SupportsStreaming: true,
			},
		}, nil
	}

	for i := range models {
		models[i].Vendor = VendorDeepSeek
	}
	return models, nil
}

func (p *DeepSeekProvider) TestConnection(ctx context.Context) error {
	return p.inner.TestConnection(ctx)
}
