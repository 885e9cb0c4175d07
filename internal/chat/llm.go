package chat

import "context"

// TokenUsage reports provider token accounting for one completion.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest carries one completion request. Messages includes the seed
// turns followed by the conversation so far; system-role turns are mapped
// to whatever the provider's system channel is.
type LLMRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// LLMResponse is the provider-neutral completion result.
type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient generates a completion for a conversation. Implementations must
// honor ctx cancellation and deadlines.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
