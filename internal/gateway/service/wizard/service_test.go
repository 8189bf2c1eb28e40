package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookforge/internal/codegen"
	"hookforge/internal/gateway/repository/artifact"
	"hookforge/internal/gateway/repository/session"
	"hookforge/internal/generate"
	"hookforge/internal/llm"
	"hookforge/internal/prompt"
	"hookforge/internal/token"
)

// gatedGenerator blocks until release is closed, then answers.
type gatedGenerator struct {
	started chan token.Config
	release chan struct{}
	res     generate.Result
	err     error
}

func newGated() *gatedGenerator {
	return &gatedGenerator{
		started: make(chan token.Config, 4),
		release: make(chan struct{}),
		res: generate.Result{
			Artifacts: codegen.Parse(llm.FakeResponse("gated")),
			Model:     "gated",
		},
	}
}

func (g *gatedGenerator) Generate(ctx context.Context, cfg token.Config) (generate.Result, error) {
	g.started <- cfg
	select {
	case <-g.release:
	case <-ctx.Done():
		return generate.Result{}, ctx.Err()
	}
	return g.res, g.err
}

func newService(t *testing.T, gen Generator) *Service {
	t.Helper()
	store, err := session.NewLRUStore(16, nil)
	require.NoError(t, err)
	return New(store, gen, artifact.NewMemoryStore(), nil)
}

func fakeGenerator() Generator {
	return generate.New(llm.NewCompletionClient(llm.NewFakeClient(), nil), prompt.Builder{}, nil)
}

func TestCreateStartsWithDefaults(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx := context.Background()

	sess := svc.Create(ctx)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, session.StepDetails, sess.Step)
	assert.Equal(t, session.StatusIdle, sess.Status)
	assert.Equal(t, token.Default(), sess.Config)

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestUpdateAndIcon(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx := context.Background()
	sess := svc.Create(ctx)

	symbol := "HOOK"
	got, err := svc.Update(ctx, sess.ID, token.Patch{Symbol: &symbol})
	require.NoError(t, err)
	assert.Equal(t, "HOOK", got.Config.Symbol)

	got, err = svc.SetIcon(ctx, sess.ID, []byte("\x89PNG\r\n\x1a\n\x00\x00"))
	require.NoError(t, err)
	assert.NotEmpty(t, got.Config.IconPreview)

	got, err = svc.SetIcon(ctx, sess.ID, []byte("not an image"))
	require.Error(t, err)
	assert.NotEmpty(t, got.Config.IconPreview, "failed load keeps the previous icon")

	got, err = svc.ClearIcon(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Config.IconPreview)
	assert.Nil(t, got.Config.Icon)
}

func TestUnknownSession(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx := context.Background()

	_, err := svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = svc.Generate(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), session.ErrNotFound)
}

func TestSetStep(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx := context.Background()
	sess := svc.Create(ctx)

	got, err := svc.SetStep(ctx, sess.ID, session.StepReview)
	require.NoError(t, err)
	assert.Equal(t, session.StepReview, got.Step)

	_, err = svc.SetStep(ctx, sess.ID, session.StepGenerated)
	assert.ErrorIs(t, err, ErrNoArtifacts)

	_, err = svc.SetStep(ctx, sess.ID, session.Step(9))
	assert.ErrorIs(t, err, ErrInvalidStep)

	empty := ""
	_, err = svc.Update(ctx, sess.ID, token.Patch{Name: &empty})
	require.NoError(t, err)
	_, err = svc.SetStep(ctx, sess.ID, session.StepHook)
	var verr *token.ValidationError
	assert.True(t, errors.As(err, &verr))

	got, err = svc.SetStep(ctx, sess.ID, session.StepDetails)
	require.NoError(t, err, "going back to details is always allowed")
	assert.Equal(t, session.StepDetails, got.Step)
}

func TestGenerateSuccess(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx := context.Background()
	sess := svc.Create(ctx)

	got, err := svc.Generate(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, got.Status)
	assert.Equal(t, session.StepGenerated, got.Step)
	require.NotNil(t, got.Result)
	assert.True(t, got.Result.Parsed.All())
	assert.Contains(t, got.Result.Artifacts.ProgramSource, "My Solana Token")
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	gen := newGated()
	svc := newService(t, gen)
	ctx := context.Background()
	sess := svc.Create(ctx)

	zero := uint64(0)
	_, err := svc.Update(ctx, sess.ID, token.Patch{Supply: &zero})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, sess.ID)
	var verr *token.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, gen.started, "pipeline never ran")
}

func TestGenerateFailureKeepsUserMessage(t *testing.T) {
	gen := newGated()
	gen.err = &llm.UpstreamError{Cause: errors.New("403 API key invalid")}
	close(gen.release)
	svc := newService(t, gen)
	ctx := context.Background()
	sess := svc.Create(ctx)

	got, err := svc.Generate(ctx, sess.ID)
	require.Error(t, err)
	assert.Equal(t, session.StatusFailed, got.Status)
	assert.Equal(t, session.StepReview, got.Step)
	assert.Equal(t, llm.UserMessage, got.Error)
	assert.Nil(t, got.Result)

	gen.err = nil
	got, err = svc.Generate(ctx, sess.ID)
	require.NoError(t, err, "retry from the same configuration")
	assert.Empty(t, got.Error)
	assert.Equal(t, session.StatusReady, got.Status)
}

func TestGenerateInFlightGuard(t *testing.T) {
	gen := newGated()
	svc := newService(t, gen)
	ctx := context.Background()
	sess := svc.Create(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, sess.ID)
		done <- err
	}()
	<-gen.started

	_, err := svc.Generate(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	_, err = svc.SetStep(ctx, sess.ID, session.StepHook)
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	close(gen.release)
	require.NoError(t, <-done)

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, got.Status)
}

func TestResetDiscardsInFlightResult(t *testing.T) {
	gen := newGated()
	svc := newService(t, gen)
	ctx := context.Background()
	sess := svc.Create(ctx)

	type outcome struct {
		sess session.Session
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := svc.Generate(ctx, sess.ID)
		done <- outcome{s, err}
	}()
	<-gen.started

	got, err := svc.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StepDetails, got.Step)

	close(gen.release)
	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, session.StatusIdle, out.sess.Status, "caller sees the current state, not the pre-run one")
	assert.Equal(t, session.StepDetails, out.sess.Step)
	assert.Nil(t, out.sess.Result)

	got, err = svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Result, "stale result dropped")
	assert.Equal(t, session.StatusIdle, got.Status)
	assert.Equal(t, "My Solana Token", got.Config.Name, "config survives reset")
}

func TestDeleteDuringGenerationReportsNotFound(t *testing.T) {
	gen := newGated()
	svc := newService(t, gen)
	ctx := context.Background()
	sess := svc.Create(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, sess.ID)
		done <- err
	}()
	<-gen.started

	require.NoError(t, svc.Delete(ctx, sess.ID))
	close(gen.release)
	assert.ErrorIs(t, <-done, session.ErrNotFound)
}

func TestGenerateIgnoresCallerCancellation(t *testing.T) {
	svc := newService(t, fakeGenerator())
	sess := svc.Create(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := svc.Generate(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, got.Status)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.Result)
	assert.True(t, got.Result.Parsed.All())
}

func TestGenerateOutlivesCallerDeadline(t *testing.T) {
	gen := newGated()
	svc := newService(t, gen)
	sess := svc.Create(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, sess.ID)
		done <- err
	}()
	<-gen.started
	<-ctx.Done()

	close(gen.release)
	require.NoError(t, <-done)
	got, err := svc.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, got.Status)
}

func TestExport(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx := context.Background()
	sess := svc.Create(ctx)

	_, err := svc.Export(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNoArtifacts)

	gen, err := svc.Generate(ctx, sess.ID)
	require.NoError(t, err)

	exp, err := svc.Export(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, exp.Files, 3)
	assert.Equal(t, codegen.ProgramPath, exp.Files[0].Path)

	raw, err := svc.ReadExport(ctx, exp.ID, codegen.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, gen.Result.Artifacts.Manifest, string(raw))

	listed, err := svc.LookupExport(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp.ID, listed.ID)
	assert.ElementsMatch(t, exp.Files, listed.Files)

	_, err = svc.LookupExport(ctx, sess.ID+"-run-99")
	assert.ErrorIs(t, err, artifact.ErrNotFound)
	_, err = svc.LookupExport(ctx, " ")
	assert.ErrorIs(t, err, artifact.ErrInvalidKey)
}

func TestSubscribe(t *testing.T) {
	svc := newService(t, fakeGenerator())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess := svc.Create(ctx)

	events, err := svc.Subscribe(ctx, sess.ID)
	require.NoError(t, err)

	first := readEvent(t, events)
	assert.Equal(t, session.StatusIdle, first.Status)

	_, err = svc.Generate(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, session.StatusGenerating, readEvent(t, events).Status)
	ready := readEvent(t, events)
	assert.Equal(t, session.StatusReady, ready.Status)
	require.NotNil(t, ready.Parsed)
	assert.True(t, ready.Parsed.All())

	require.NoError(t, svc.Delete(ctx, sess.ID))
	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel closed on delete")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func readEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok)
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}
