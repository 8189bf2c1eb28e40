// Package generate runs the configuration -> prompt -> completion -> artifacts
// pipeline.
package generate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hookforge/internal/codegen"
	"hookforge/internal/llm"
	"hookforge/internal/prompt"
	"hookforge/internal/token"
)

// Completer is the one external call of a run.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Result is the outcome of one successful run.
type Result struct {
	Artifacts       codegen.Artifacts `json:"artifacts"`
	Parsed          codegen.Parsed    `json:"parsed"`
	Prompt          string            `json:"prompt"`
	TimeLockSeconds int64             `json:"timeLockSeconds"`
	Model           string            `json:"model"`
	Elapsed         time.Duration     `json:"elapsed"`
}

type Service struct {
	completer Completer
	builder   prompt.Builder
	log       *zap.Logger
}

func New(completer Completer, builder prompt.Builder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, builder: builder, log: logger}
}

// Generate runs the pipeline once for cfg. Completion failures are returned
// as-is (*llm.EmptyResponseError, *llm.UpstreamError); parsing never fails.
func (s *Service) Generate(ctx context.Context, cfg token.Config) (Result, error) {
	snapshot := cfg.Clone()
	text := s.builder.Build(snapshot)

	start := time.Now()
	raw, err := s.completer.Complete(ctx, text)
	if err != nil {
		return Result{}, err
	}
	artifacts := codegen.Parse(raw)
	res := Result{
		Artifacts:       artifacts,
		Parsed:          artifacts.Parsed(),
		Prompt:          text,
		TimeLockSeconds: snapshot.TimeLockSeconds(),
		Model:           s.completer.Model(),
		Elapsed:         time.Since(start),
	}
	if !res.Parsed.All() {
		s.log.Warn("completion partially parsed",
			zap.String("phase", llm.PhaseFrom(ctx)),
			zap.Bool("program", res.Parsed.Program),
			zap.Bool("manifest", res.Parsed.Manifest),
			zap.Bool("deployment", res.Parsed.Deployment))
	}
	s.log.Info("generated artifacts",
		zap.String("phase", llm.PhaseFrom(ctx)),
		zap.String("token", snapshot.Symbol),
		zap.String("model", res.Model),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}
