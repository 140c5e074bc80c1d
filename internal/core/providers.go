package core

import "context"

// GenerationConfig mirrors what the completion provider accepts per call.
// The fast path uses a small token budget and no tools; the deep path
// enables code execution and thinking-trace capture.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	CodeExecution   bool
	IncludeThoughts bool
	ThinkingBudget  int
}

// Completion is the provider's answer: final text plus optional thought
// segments and tool-invocation records.
type Completion struct {
	Text     string
	Thinking string
	Tools    []ToolInvocation
}

// CompletionProvider is the opaque generative model.
type CompletionProvider interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (Completion, error)
}

// Embedder is the opaque deterministic text-to-vector capability backing
// semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
