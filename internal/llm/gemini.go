package llm

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultTemperature keeps decoding close to deterministic.
	DefaultTemperature float32 = 0.2
)

// GeminiClient is a thin wrapper around the official genai client. Cross
// cutting concerns (rate limiting, logging, hooks) are applied via Middleware.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient builds a client for apiKey. A blank key fails with a
// *ConfigurationError before any request can be made.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "is not set"}
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "rejected by client: " + err.Error()}
	}
	return &GeminiClient{cli: cli, model: model, temperature: DefaultTemperature}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateText sends prompt as the sole content and returns the concatenated
// text parts of the first candidate.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	temp := g.temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		return "", err
	}
	return completionText(resp)
}

// completionText rejects only a response without any text. Whitespace is
// returned as-is and left for the parser to turn into placeholders.
func completionText(resp *genai.GenerateContentResponse) (string, error) {
	txt := responseText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
