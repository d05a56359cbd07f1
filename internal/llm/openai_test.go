package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIProvider(ProviderConfig{
		Vendor:  VendorOpenAI,
		BaseURL: server.URL + "/v1",
		APIKey:  "test-key",
	})
}

func sseFrames(frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
		}
	}
}

func deltaFrame(content string) string {
	return fmt.Sprintf(`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func collect(t *testing.T, stream <-chan StreamChunk) []StreamChunk {
	t.Helper()
	var chunks []StreamChunk
	for chunk := range stream {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestOpenAIStreamHappyPath(t *testing.T) {
	provider := newStubServer(t, sseFrames(
		`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
		deltaFrame("Hello"),
		deltaFrame(" world"),
		"[DONE]",
	))

	resp, err := provider.ChatCompletion(context.Background(), []ChatMessage{UserMessage("hi")}, "gpt-4o-mini", true)
	require.NoError(t, err)
	require.NotNil(t, resp.Stream)

	chunks := collect(t, resp.Stream)
	// The role-only delta is dropped; the stream ends with exactly one Done.
	require.Len(t, chunks, 3)
	assert.Equal(t, TokenChunk("Hello"), chunks[0])
	assert.Equal(t, TokenChunk(" world"), chunks[1])
	assert.Equal(t, ChunkDone, chunks[2].Type)
}

func TestOpenAIStreamMalformedFrame(t *testing.T) {
	provider := newStubServer(t, sseFrames(
		deltaFrame("partial"),
		`{not json`,
		"[DONE]",
	))

	resp, err := provider.ChatCompletion(context.Background(), []ChatMessage{UserMessage("hi")}, "gpt-4o-mini", true)
	require.NoError(t, err)

	chunks := collect(t, resp.Stream)
	require.NotEmpty(t, chunks)
	assert.Equal(t, TokenChunk("partial"), chunks[0])

	// An Error chunk surfaces the failure, and Done is still the final chunk.
	last := chunks[len(chunks)-1]
	assert.Equal(t, ChunkDone, last.Type)
	assert.Equal(t, ChunkError, chunks[len(chunks)-2].Type)
}

func TestOpenAIStreamConsumerCancellation(t *testing.T) {
	frames := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		frames = append(frames, deltaFrame("x"))
	}
	frames = append(frames, "[DONE]")
	provider := newStubServer(t, sseFrames(frames...))

	ctx, cancel := context.WithCancel(context.Background())
	resp, err := provider.ChatCompletion(ctx, []ChatMessage{UserMessage("hi")}, "gpt-4o-mini", true)
	require.NoError(t, err)

	// Read one chunk, walk away, cancel. The producer must unblock and close
	// the channel even though the buffer is full.
	<-resp.Stream
	cancel()
	for range resp.Stream {
	}
}

func TestOpenAINonStreaming(t *testing.T) {
	provider := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "1", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "42"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 1, "total_tokens": 11}
		}`)
	})

	resp, err := provider.ChatCompletion(context.Background(), []ChatMessage{UserMessage("meaning of life?")}, "gpt-4o-mini", false)
	require.NoError(t, err)
	assert.Nil(t, resp.Stream)
	assert.Equal(t, "42", resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 11, resp.Usage.TotalTokens)
}

func TestOpenAIAuthErrorMapping(t *testing.T) {
	provider := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	})

	_, err := provider.ChatCompletion(context.Background(), []ChatMessage{UserMessage("hi")}, "gpt-4o-mini", false)
	require.Error(t, err)
	assert.Equal(t, ErrKindAuth, KindOf(err))
}

func TestOpenAIQuotaErrorMapping(t *testing.T) {
	provider := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "Rate limit reached", "type": "tokens"}}`)
	})

	_, err := provider.ChatCompletion(context.Background(), []ChatMessage{UserMessage("hi")}, "gpt-4o-mini", false)
	require.Error(t, err)
	assert.Equal(t, ErrKindQuota, KindOf(err))
}
