package interfaces

import "context"

// CompletionRequest asks the completion provider for one generation
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// CompletionResult carries the generated text and usage accounting
type CompletionResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns the combined token usage of the completion
func (r *CompletionResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// CompletionClient is the language-model completion provider consumed by
// handlers. Transport and quota failures surface as ErrCapability.
type CompletionClient interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}
