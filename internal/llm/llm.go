package llm

import (
	"context"
)

// LLMClient is a text completion backend.
type LLMClient interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
