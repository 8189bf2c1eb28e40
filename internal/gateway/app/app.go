package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hookforge/internal/gateway/config"
	"hookforge/internal/gateway/handler"
	"hookforge/internal/gateway/repository/session"
	"hookforge/internal/gateway/server"
	"hookforge/internal/gateway/service/wizard"
	"hookforge/internal/generate"
	"hookforge/internal/llm"
	"hookforge/internal/prompt"
)

type App struct {
	server *server.Server
	llm    *llm.CompletionClient
	log    *zap.Logger
}

func New(ctx context.Context, args []string) (*App, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	// Dependencies
	backend, err := newLLMBackend(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	completion := llm.NewCompletionClient(backend, logger)
	generator := generate.New(completion, prompt.Builder{Mode: cfg.Prompt.HookMode}, logger)

	artifacts, err := initArtifactStore(cfg, logger)
	if err != nil {
		_ = completion.Close()
		return nil, err
	}

	var wizardSvc *wizard.Service
	sessions, err := session.NewLRUStore(cfg.Sessions.Max, func(id string) {
		if wizardSvc != nil {
			wizardSvc.Forget(id)
		}
	})
	if err != nil {
		_ = completion.Close()
		return nil, fmt.Errorf("failed to init session store: %w", err)
	}
	wizardSvc = wizard.New(sessions, generator, artifacts, logger)

	// Routing & Server
	wizardHandler := handler.NewWizardHandler(wizardSvc, logger)
	mux := server.NewMux(wizardHandler, logger)
	srv := server.New(cfg.Port, mux, logger)

	logger.Info("gateway configured",
		zap.String("env", cfg.Env),
		zap.String("model", completion.Model()),
		zap.String("hook_mode", string(cfg.Prompt.HookMode)),
		zap.Int("session_max", cfg.Sessions.Max),
	)

	return &App{
		server: srv,
		llm:    completion,
		log:    logger,
	}, nil
}

// newLLMBackend picks Gemini or the offline fake and applies the middleware
// chain. Logging sits outside the limiter so waits count toward latency.
func newLLMBackend(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (llm.LLMClient, error) {
	var base llm.LLMClient
	if cfg.Fake {
		base = llm.NewFakeClient()
	} else {
		gemini, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		base = gemini
	}
	return llm.Wrap(base,
		llm.RateLimit(cfg.RPS, cfg.Burst),
		llm.WithLogging(logger),
	), nil
}

// NewLogger returns a development logger locally and a JSON production
// logger elsewhere.
func NewLogger(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	var zc zap.Config
	if env == "local" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func (a *App) Logger() *zap.Logger { return a.log }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.llm.Close(); cerr != nil && err == nil {
		err = cerr
	}
	_ = a.log.Sync()
	return err
}
