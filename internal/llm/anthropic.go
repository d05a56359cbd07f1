package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const anthropicMaxTokens = 4096

// AnthropicProvider adapts the Claude Messages API. Anthropic has no
// OpenAI-shaped wire format, so it gets its own adapter instead of the
// delegation path.
type AnthropicProvider struct {
	cfg    ProviderConfig
	client *anthropic.Client
}

func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL(VendorAnthropic) {
		baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		cfg:    cfg,
		client: anthropic.NewClient(cfg.APIKey, opts...),
	}
}

func (p *AnthropicProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error) {
	req := p.buildRequest(messages, model)

	if stream {
		return p.streamCompletion(ctx, req)
	}

	resp, err := p.client.CreateMessages(ctx, req)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	content := resp.GetFirstContentText()
	if content == "" {
		return nil, NewError(ErrKindParse, "no text content in messages response")
	}

	return &Response{
		Content: content,
		Model:   string(resp.Model),
		Usage: &Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

func (p *AnthropicProvider) streamCompletion(ctx context.Context, req anthropic.MessagesRequest) (*Response, error) {
	ch := make(chan StreamChunk, streamBuffer)

	go func() {
		defer close(ch)

		req.Stream = true
		_, err := p.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
			MessagesRequest: req,
			OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
				text := data.Delta.GetText()
				if text == "" {
					return
				}
				send(ctx, ch, TokenChunk(text))
			},
		})
		if err != nil && !send(ctx, ch, ErrorChunk(mapAnthropicError(err).Error())) {
			return
		}

		send(ctx, ch, DoneChunk())
	}()

	return &Response{Stream: ch}, nil
}

// ListModels returns a static catalog. Anthropic exposes no listing endpoint
// usable with a plain API key.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return []ModelInfo{
		{
			ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", Vendor: VendorAnthropic,
			ContextLength: 200000, MaxTokens: 4096,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
		{
			ID: "claude-3-sonnet-20240229", Name: "Claude 3 Sonnet", Vendor: VendorAnthropic,
			ContextLength: 200000, MaxTokens: 4096,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
		{
			ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku", Vendor: VendorAnthropic,
			ContextLength: 200000, MaxTokens: 4096,
			SupportsStreaming: true, SupportsFunctionCalling: true,
		},
	}, nil
}

// TestConnection issues a minimal one-token completion; the model catalog is
// static so listing proves nothing about the credential.
func (p *AnthropicProvider) TestConnection(ctx context.Context) error {
	req := p.buildRequest([]ChatMessage{UserMessage("ping")}, p.cfg.DefaultModel)
	req.MaxTokens = 1

	_, err := p.client.CreateMessages(ctx, req)
	if err == nil {
		return nil
	}
	mapped := mapAnthropicError(err)
	if mapped.Kind == ErrKindAuth {
		return mapped
	}
	return WrapError(ErrKindConfig, "connection test failed", mapped)
}

// buildRequest converts the neutral conversation shape. System turns move to
// the dedicated System field; the remaining turns keep their order.
func (p *AnthropicProvider) buildRequest(messages []ChatMessage, model string) anthropic.MessagesRequest {
	var system []string
	turns := make([]anthropic.Message, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantTextMessage(m.Content))
		default:
			turns = append(turns, anthropic.NewUserTextMessage(m.Content))
		}
	}

	return anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		Messages:  turns,
		System:    strings.Join(system, "\n\n"),
		MaxTokens: anthropicMaxTokens,
	}
}

func mapAnthropicError(err error) *Error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return FromStatusCode(reqErr.StatusCode, reqErr.Error())
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthenticationErr() || apiErr.IsPermissionErr():
			return NewError(ErrKindAuth, apiErr.Message)
		case apiErr.IsNotFoundErr():
			return NewError(ErrKindModel, apiErr.Message)
		case apiErr.IsRateLimitErr():
			return NewError(ErrKindQuota, apiErr.Message)
		case apiErr.IsInvalidRequestErr():
			return NewError(ErrKindBadRequest, apiErr.Message)
		default:
			return NewError(ErrKindNetwork, apiErr.Message)
		}
	}

	return WrapError(ErrKindNetwork, "request failed", err)
}
