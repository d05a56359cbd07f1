package llm

import "context"

// CustomProvider handles any OpenAI-compatible endpoint (Ollama, vLLM,
// LiteLLM, Together AI and the like) by delegating to the reference adapter.
type CustomProvider struct {
	cfg   ProviderConfig
	inner *OpenAIProvider
}

func NewCustomProvider(cfg ProviderConfig) *CustomProvider {
	return &CustomProvider{cfg: cfg, inner: NewOpenAIProvider(cfg)}
}

func (p *CustomProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error) {
	return p.inner.ChatCompletion(ctx, messages, model, stream)
}

func (p *CustomProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models, err := p.inner.ListModels(ctx)
	if err != nil {
		// Many self-hosted gateways do not implement /models. Report the
		// configured default so the UI has something to select.
		return []ModelInfo{
			{
				ID:                p.cfg.DefaultModel,
				Name:              p.cfg.DefaultModel,
				Vendor:            p.cfg.Vendor,
				SupportsStreaming: true,
			},
		}, nil
	}

	for i := range models {
		models[i].Vendor = p.cfg.Vendor
	}
	return models, nil
}

func (p *CustomProvider) TestConnection(ctx context.Context) error {
	return p.inner.TestConnection(ctx)
}
