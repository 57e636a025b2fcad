// Package llm defines the text-generation contract the retrieval pipeline
// consumes. Implementations live in sibling packages (openai, ollama) and
// are selected once at bootstrap.
package llm

import (
	"context"
	"unicode/utf8"
)

// Params are the sampling parameters for one generation call. Nil fields
// fall back to the client's defaults.
type Params struct {
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	StopSequences    []string
}

type ModelInfo struct {
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	MaxTokens int    `json:"max_tokens"`
}

// Client is the pluggable text-generation backend.
type Client interface {
	Generate(ctx context.Context, prompt string, params *Params) (string, error)
	// GenerateStream emits deltas through onDelta as they arrive and
	// returns the full concatenated text. The stream is finite and not
	// restartable.
	GenerateStream(ctx context.Context, prompt string, params *Params, onDelta func(delta string)) (string, error)
	CountTokens(ctx context.Context, text string) (int, error)
	ModelInfo(ctx context.Context) (ModelInfo, error)
}

// EstimateTokens approximates a token count at roughly four characters per
// token. Neither backend exposes a tokenizer endpoint, and the estimate is
// only used for budgeting, never billing.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

func Float64(v float64) *float64 { return &v }
func Int(v int) *int             { return &v }
