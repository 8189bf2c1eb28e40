package llm

import (
	"context"
)

// PromptHook observes every completion request and its outcome.
type PromptHook interface {
	Before(ctx context.Context, phase, prompt string)
	After(ctx context.Context, phase, raw string, err error)
}

type ctxKeyPhase struct{}

// WithPhase labels the requests made with ctx, e.g. the wizard session id.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

// WithHook calls hook around every request reaching next.
func WithHook(hook PromptHook) Middleware {
	return func(next LLMClient) LLMClient {
		if hook == nil {
			return next
		}
		return &hooked{next: next, hook: hook}
	}
}

type hooked struct {
	next LLMClient
	hook PromptHook
}

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }

func (h *hooked) GenerateText(ctx context.Context, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	h.hook.Before(ctx, phase, prompt)
	raw, err := h.next.GenerateText(ctx, prompt)
	h.hook.After(ctx, phase, raw, err)
	return raw, err
}
