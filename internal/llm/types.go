package llm

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in the conversation sent to a provider.
// Ordering is preserved end to end.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// Usage reports token counts for a completed (non-streaming) call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	Vendor                  string `json:"vendor"`
	ContextLength           int    `json:"context_length,omitempty"`
	MaxTokens               int    `json:"max_tokens,omitempty"`
	SupportsStreaming       bool   `json:"supports_streaming"`
	SupportsFunctionCalling bool   `json:"supports_function_calling"`
}

// ChunkType tags a StreamChunk.
type ChunkType string

const (
	ChunkToken ChunkType = "token"
	ChunkError ChunkType = "error"
	ChunkDone  ChunkType = "done"
)

// StreamChunk is one event on a streaming response channel.
// A Done chunk is terminal: once a producer goroutine has started it always
// sends Done as its final chunk, on success, provider error or transport error.
type StreamChunk struct {
	Type    ChunkType `json:"type"`
	Content string    `json:"content,omitempty"`
}

func TokenChunk(text string) StreamChunk {
	return StreamChunk{Type: ChunkToken, Content: text}
}

func ErrorChunk(message string) StreamChunk {
	return StreamChunk{Type: ChunkError, Content: message}
}

func DoneChunk() StreamChunk {
	return StreamChunk{Type: ChunkDone}
}

// streamBuffer is the capacity of every streaming response channel. The
// producer blocks once the consumer falls this far behind, which is the
// backpressure mechanism between the network read and the relay.
const streamBuffer = 100

// Response is the vendor-neutral result of a chat completion: either a
// single buffered completion or a live stream channel. Exactly one of the
// two shapes is populated; callers switch on Stream != nil.
type Response struct {
	// Completion fields, set when the call was non-streaming.
	Content string
	Model   string
	Usage   *Usage

	// Stream is set when the call was streaming. The channel is closed
	// after the terminal Done chunk.
	Stream <-chan StreamChunk
}
