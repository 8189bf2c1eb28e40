package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hookforge/internal/generate"
	"hookforge/internal/llm"
	"hookforge/internal/prompt"
	"hookforge/internal/safeio"
)

func promptBuilder() prompt.Builder {
	mode := hookMode
	if strings.TrimSpace(mode) == "" {
		mode = os.Getenv("PROMPT_HOOK_MODE")
	}
	return prompt.Builder{Mode: prompt.ParseHookMode(mode)}
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadTokenConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), promptBuilder().Build(cfg))
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadTokenConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	backend, err := newBackend(ctx)
	if err != nil {
		return err
	}
	mws := []llm.Middleware{llm.WithLogging(logger)}
	if saveRaw {
		mws = append(mws, llm.WithHook(&promptSaver{Dir: filepath.Join(outDir, "raw")}))
	}
	completion := llm.NewCompletionClient(llm.Wrap(backend, mws...), logger)
	defer completion.Close()

	ctx = llm.WithPhase(ctx, "generate")
	res, err := generate.New(completion, promptBuilder(), logger).Generate(ctx, cfg)
	if err != nil {
		var up *llm.UpstreamError
		if errors.As(err, &up) {
			logger.Debug("upstream cause", zap.Error(up.Cause))
		}
		return err
	}

	written, err := writeArtifacts(outDir, res.Artifacts.Files())
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	if !res.Parsed.All() {
		logger.Warn("some sections could not be parsed; placeholders were written",
			zap.Bool("program", res.Parsed.Program),
			zap.Bool("manifest", res.Parsed.Manifest),
			zap.Bool("deployment", res.Parsed.Deployment),
		)
	}
	logger.Info("generation complete",
		zap.String("model", res.Model),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int64("time_lock_seconds", res.TimeLockSeconds),
	)
	return nil
}

func newBackend(ctx context.Context) (llm.LLMClient, error) {
	useFake := fake
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("LLM_FAKE"))); err == nil && v {
		useFake = true
	}
	if useFake {
		return llm.NewFakeClient(), nil
	}
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}
	m := model
	if m == "" {
		m = os.Getenv("GEMINI_MODEL")
	}
	return llm.NewGeminiClient(ctx, apiKey, m)
}

// writeArtifacts writes files under dir and returns the written paths in
// sorted order.
func writeArtifacts(dir string, files map[string]string) ([]string, error) {
	root, err := safeio.CreateSafeFS(dir)
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		full, err := root.WriteFile(p, []byte(files[p]))
		if err != nil {
			return out, fmt.Errorf("write %s: %w", p, err)
		}
		out = append(out, full)
	}
	return out, nil
}
