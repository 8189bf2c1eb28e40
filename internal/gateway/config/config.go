package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hookforge/internal/llm"
	"hookforge/internal/prompt"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	LLM      LLMConfig
	Prompt   PromptConfig
	Sessions SessionConfig
	Artifact ArtifactConfig
}

type LLMConfig struct {
	APIKey string
	Model  string
	// Fake answers locally without calling Gemini.
	Fake  bool
	RPS   float64
	Burst int
}

type PromptConfig struct {
	HookMode prompt.HookMode
}

type SessionConfig struct {
	Max int
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// URLExpiry bounds presigned download links.
	URLExpiry time.Duration
}

// CanUseS3 reports whether enough settings exist to build an S3 store.
func (c ArtifactConfig) CanUseS3() bool {
	return c.Enabled && c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// Load reads .env (if present), flags and the environment. A missing API
// key fails here with *llm.ConfigurationError unless LLM_FAKE is set.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:     *port,
		Env:      env,
		LogLevel: firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		LLM:      loadLLMConfig(),
		Prompt:   PromptConfig{HookMode: prompt.ParseHookMode(os.Getenv("PROMPT_HOOK_MODE"))},
		Sessions: SessionConfig{Max: envInt("SESSION_MAX", 1024)},
		Artifact: loadArtifactConfig(env),
	}
	if !cfg.LLM.Fake && cfg.LLM.APIKey == "" {
		return nil, &llm.ConfigurationError{Setting: "GEMINI_API_KEY", Reason: "is not set (or set LLM_FAKE=1)"}
	}
	return cfg, nil
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		APIKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("API_KEY"))),
		Model:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), llm.DefaultGeminiModel),
		Fake:   envBool("LLM_FAKE", false),
		RPS:    envFloat("LLM_RPS", 0),
		Burst:  envInt("LLM_BURST", 1),
	}
}

func loadArtifactConfig(env string) ArtifactConfig {
	if isLocal(env) {
		return localArtifactConfig()
	}
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "hookforge-artifacts"),
		UseSSL:    envBool("ARTIFACT_S3_USE_SSL", true),
		URLExpiry: envDuration("ARTIFACT_S3_URL_EXPIRY", time.Hour),
	}
}

func isLocal(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "local")
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
