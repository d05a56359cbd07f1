package llm

// CreateProvider dispatches on the vendor tag. Unknown tags route to the
// custom OpenAI-compatible adapter, the generalized fallback for any
// OpenAI-shaped API. Adapters are constructed per call; they are cheap and
// hold no shared state, so there is nothing to pool.
func CreateProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrKindConfig, "api key is required")
	}

	switch cfg.Vendor {
	case VendorOpenAI:
		return NewOpenAIProvider(cfg), nil
	case VendorAnthropic:
		return NewAnthropicProvider(cfg), nil
	case VendorGoogle:
		return NewGoogleProvider(cfg), nil
	case VendorDeepSeek:
		return NewDeepSeekProvider(cfg), nil
	case VendorAzureOpenAI:
		if cfg.BaseURL == "" {
			return nil, NewError(ErrKindConfig, "azure openai requires a base URL")
		}
		return NewAzureOpenAIProvider(cfg), nil
	default:
		if cfg.BaseURL == "" {
			return nil, NewError(ErrKindConfig, "custom vendors require a base URL")
		}
		return NewCustomProvider(cfg), nil
	}
}

// SupportedVendors lists the vendor tags the factory knows natively.
func SupportedVendors() []string {
	return []string{
		VendorOpenAI,
		VendorAnthropic,
		VendorGoogle,
		VendorDeepSeek,
		VendorAzureOpenAI,
		VendorCustom,
	}
}
