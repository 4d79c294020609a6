package ports

import "context"

// ChatMessage is one entry of the outbound conversation sent to the
// completion service.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// CompletionResult is the flattened reply: content of the first choice plus
// its finish reason. The session layer decides what counts as a usable
// response.
type CompletionResult struct {
	Content      string
	FinishReason string
}

const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)

type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
