package domain

import "context"

// Generator is the generative backend contract shared by the planner and synthesizer.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is a single text generation call.
type GenerationRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// GenerationResult carries the generated text and its token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
