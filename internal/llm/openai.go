package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gitscout/backend/pkg/logger"
)

// OpenAIProvider is the reference adapter. Every OpenAI-compatible vendor
// (DeepSeek, custom endpoints) delegates to it.
type OpenAIProvider struct {
	cfg    ProviderConfig
	client *openai.Client
}

func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL(VendorOpenAI)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimSuffix(baseURL, "/")

	return &OpenAIProvider{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (p *OpenAIProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, model string, stream bool) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
		Stream:   stream,
	}

	if stream {
		return p.streamCompletion(ctx, req)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, NewError(ErrKindParse, "no choices in completion response")
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// streamCompletion opens the event stream and hands it to a producer
// goroutine. The goroutine owns the stream for its lifetime and guarantees
// the final chunk on the channel is Done before closing it.
func (p *OpenAIProvider) streamCompletion(ctx context.Context, req openai.ChatCompletionRequest) (*Response, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	ch := make(chan StreamChunk, streamBuffer)

	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if !send(ctx, ch, ErrorChunk(mapOpenAIError(err).Error())) {
					return
				}
				break
			}

			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				// Empty deltas carry role/finish metadata only.
				continue
			}
			if !send(ctx, ch, TokenChunk(delta)) {
				return
			}
		}

		send(ctx, ch, DoneChunk())
	}()

	return &Response{Stream: ch}, nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	models := make([]ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, ModelInfo{
			ID:                m.ID,
			Name:              m.ID,
			Vendor:            VendorOpenAI,
			SupportsStreaming: true,
		})
	}

	logger.Debug("Listed provider models",
		zap.String("vendor", p.cfg.Vendor),
		zap.Int("count", len(models)),
	)

	return models, nil
}

func (p *OpenAIProvider) TestConnection(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	if err == nil {
		return nil
	}
	if KindOf(err) == ErrKindAuth {
		return err
	}
	return WrapError(ErrKindConfig, "connection test failed", err)
}

// send delivers a chunk unless the context is cancelled. Cancellation is how
// an abandoned consumer unblocks the producer once the channel buffer fills.
func send(ctx context.Context, ch chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// mapOpenAIError converts SDK errors into the shared taxonomy.
func mapOpenAIError(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return FromStatusCode(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return FromStatusCode(reqErr.HTTPStatusCode, reqErr.Error())
	}

	return WrapError(ErrKindNetwork, "request failed", err)
}
