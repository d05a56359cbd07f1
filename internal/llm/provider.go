package llm

import "context"

// Vendor tags for the supported provider families. Anything else is treated
// as a custom OpenAI-compatible endpoint.
const (
	VendorOpenAI      = "openai"
	VendorAnthropic   = "anthropic"
	VendorGoogle      = "google"
	VendorDeepSeek    = "deepseek"
	VendorAzureOpenAI = "azure_openai"
	VendorCustom      = "custom"
)

// DefaultBaseURL returns the vendor's canonical API base URL. Vendors that
// require a user-supplied URL return "".
func DefaultBaseURL(vendor string) string {
	switch vendor {
	case VendorOpenAI:
		return "https://api.openai.com/v1"
	case VendorAnthropic:
		return "https://api.anthropic.com"
	case VendorGoogle:
		return "https://generativelanguage.googleapis.com/v1"
	case VendorDeepSeek:
		return "https://api.deepseek.com"
	default:
		return ""
	}
}

// DefaultModel returns the vendor's default model name.
func DefaultModel(vendor string) string {
	switch vendor {
	case VendorOpenAI:
		return "gpt-4o-mini"
	case VendorAnthropic:
		return "claude-3-haiku-20240307"
	case VendorGoogle:
		return "gemini-pro"
	case VendorDeepSeek:
		return "deepseek-chat"
	case VendorAzureOpenAI:
		return "gpt-4"
	default:
		return "custom-model"
	}
}

// DisplayName returns a human readable vendor label.
func DisplayName(vendor string) string {
	switch vendor {
	case VendorOpenAI:
		return "OpenAI"
	case VendorAnthropic:
		return "Anthropic (Claude)"
	case VendorGoogle:
		return "Google (Gemini)"
	case VendorDeepSeek:
		return "DeepSeek"
	case VendorAzureOpenAI:
		return "Azure OpenAI"
	default:
		return "Custom (OpenAI-compatible)"
	}
}

// ProviderConfig carries the credential and endpoint material an adapter
// needs for a single request. Adapters copy it; they never mutate it.
type ProviderConfig struct {
	Vendor       string
	BaseURL      string
	APIKey       string
	DefaultModel string
}

// Provider is the vendor-neutral chat completion contract. Implementations
// are cheap value objects constructed per request by the factory; they hold
// no shared mutable state.
type Provider interface {
	// ChatCompletion runs one conversation against the vendor. With
	// stream=false the Response carries a single completion; with
	// stream=true it carries a live chunk channel whose final chunk is
	// always Done.
	ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error)

	// ListModels returns the models reachable with this configuration.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// TestConnection verifies the endpoint and credential.
	TestConnection(ctx context.Context) error
}
