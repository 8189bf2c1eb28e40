package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// CompletionClient issues the single completion request of a generation
// run and normalizes its failures into the package error types.
type CompletionClient struct {
	backend LLMClient
	log     *zap.Logger
}

func NewCompletionClient(backend LLMClient, logger *zap.Logger) *CompletionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionClient{backend: backend, log: logger}
}

// Model names the backend serving requests.
func (c *CompletionClient) Model() string { return c.backend.Name() }

func (c *CompletionClient) Close() error { return c.backend.Close() }

// Complete sends prompt once. Failures are *EmptyResponseError or
// *UpstreamError; the original cause is logged here and kept for errors.As
// but never rendered by Error().
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	raw, err := c.backend.GenerateText(ctx, prompt)
	if err == nil && raw == "" {
		err = ErrEmptyResponse
	}
	switch {
	case errors.Is(err, ErrEmptyResponse):
		c.log.Error("completion returned no text",
			zap.String("client", c.backend.Name()),
			zap.String("phase", PhaseFrom(ctx)))
		return "", &EmptyResponseError{}
	case err != nil:
		c.log.Error("completion request failed",
			zap.String("client", c.backend.Name()),
			zap.String("phase", PhaseFrom(ctx)),
			zap.Error(err))
		return "", &UpstreamError{Cause: err}
	}
	return raw, nil
}
