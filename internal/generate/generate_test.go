package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookforge/internal/codegen"
	"hookforge/internal/llm"
	"hookforge/internal/prompt"
	"hookforge/internal/token"
)

type recordingBackend struct {
	raw     string
	err     error
	prompts []string
}

func (r *recordingBackend) Name() string { return "recording" }
func (r *recordingBackend) Close() error { return nil }
func (r *recordingBackend) GenerateText(_ context.Context, p string) (string, error) {
	r.prompts = append(r.prompts, p)
	return r.raw, r.err
}

func TestGenerateWithFakeClient(t *testing.T) {
	svc := New(llm.NewCompletionClient(llm.NewFakeClient(), nil), prompt.Builder{}, nil)

	res, err := svc.Generate(context.Background(), token.Default())
	require.NoError(t, err)

	assert.True(t, res.Parsed.All())
	assert.Contains(t, res.Artifacts.ProgramSource, "Transfer hook for My Solana Token")
	assert.Contains(t, res.Artifacts.Manifest, "anchor-lang")
	assert.Contains(t, res.Artifacts.DeploymentSteps, "anchor build")
	assert.Equal(t, int64(86400), res.TimeLockSeconds)
	assert.Equal(t, "FakeLLM", res.Model)
	assert.Contains(t, res.Prompt, "24 hours (86400 seconds)")
}

func TestGenerateSendsBuiltPrompt(t *testing.T) {
	backend := &recordingBackend{raw: "nothing useful"}
	builder := prompt.Builder{Mode: prompt.HookRespectFlag}
	svc := New(llm.NewCompletionClient(backend, nil), builder, nil)

	cfg := token.Default()
	cfg.HookEnabled = false
	res, err := svc.Generate(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, backend.prompts, 1)
	assert.Equal(t, builder.Build(cfg), backend.prompts[0])
	assert.Equal(t, codegen.ProgramUnparsed, res.Artifacts.ProgramSource)
	assert.Equal(t, codegen.ManifestUnparsed, res.Artifacts.Manifest)
	assert.Equal(t, codegen.DeploymentUnparsed, res.Artifacts.DeploymentSteps)
}

func TestGenerateSurfacesUpstreamError(t *testing.T) {
	cause := errors.New("429 resource exhausted")
	backend := &recordingBackend{err: cause}
	svc := New(llm.NewCompletionClient(backend, nil), prompt.Builder{}, nil)

	res, err := svc.Generate(context.Background(), token.Default())
	require.Error(t, err)
	assert.Equal(t, Result{}, res)

	var up *llm.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, llm.UserMessage, err.Error())
	assert.Len(t, backend.prompts, 1)
}

func TestGenerateSurfacesEmptyResponse(t *testing.T) {
	svc := New(llm.NewCompletionClient(&recordingBackend{}, nil), prompt.Builder{}, nil)

	_, err := svc.Generate(context.Background(), token.Default())
	var empty *llm.EmptyResponseError
	assert.True(t, errors.As(err, &empty))
}

func TestGenerateAcceptsUnvalidatedConfig(t *testing.T) {
	backend := &recordingBackend{raw: llm.FakeResponse("x")}
	svc := New(llm.NewCompletionClient(backend, nil), prompt.Builder{}, nil)

	cfg := token.Config{TimeLockValue: 2, TimeLockUnit: token.TimeUnit("weeks"), RoyaltyPercentage: 250}
	res, err := svc.Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(120), res.TimeLockSeconds)
	assert.Contains(t, backend.prompts[0], "250%")
}

func TestGenerateWhitespaceAnswerGivesPlaceholders(t *testing.T) {
	backend := &recordingBackend{raw: "  \n\t"}
	svc := New(llm.NewCompletionClient(backend, nil), prompt.Builder{}, nil)

	res, err := svc.Generate(context.Background(), token.Default())
	require.NoError(t, err)
	assert.Equal(t, codegen.ProgramUnparsed, res.Artifacts.ProgramSource)
	assert.Equal(t, codegen.ManifestUnparsed, res.Artifacts.Manifest)
	assert.Equal(t, codegen.DeploymentUnparsed, res.Artifacts.DeploymentSteps)
	assert.False(t, res.Parsed.Program || res.Parsed.Manifest || res.Parsed.Deployment)
}
