package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string
	outDir     string
	model      string
	hookMode   string
	fake       bool
	saveRaw    bool
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hookforge",
	Short: "Generate a Solana transfer-hook program from a token config",
	Long: `hookforge turns a token configuration (YAML) into a prompt, asks Gemini for a
transfer-hook program, and splits the answer into lib.rs, Cargo.toml and
deployment notes.

The API key is read from GEMINI_API_KEY (or API_KEY), optionally via .env.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the program, manifest and deployment notes",
	Example: `  hookforge generate --config token.yaml --out ./out
  LLM_FAKE=1 hookforge generate -c token.yaml`,
	RunE: runGenerate,
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt that would be sent for a config",
	RunE:  runPrompt,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "token.yaml", "Token config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&hookMode, "hook-mode", "", "Prompt hook mode: always or respect_flag (default: PROMPT_HOOK_MODE)")

	generateCmd.Flags().StringVarP(&outDir, "out", "o", "out", "Output directory")
	generateCmd.Flags().StringVar(&model, "model", "", "Gemini model id (default: GEMINI_MODEL or gemini-2.5-flash)")
	generateCmd.Flags().BoolVar(&fake, "fake", false, "Answer with the offline fake client (also LLM_FAKE=1)")
	generateCmd.Flags().BoolVar(&saveRaw, "save-raw", false, "Keep the prompt and raw model answer under <out>/raw")
	generateCmd.Flags().DurationVar(&timeout, "timeout", 0, "Completion deadline; 0 waits for the request to finish or fail")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(promptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
