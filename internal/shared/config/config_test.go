package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/25eliu/ClubApp/internal/llm"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.LLMProvider != llm.ProviderOpenAI {
		t.Fatalf("expected openai provider, got %q", cfg.LLMProvider)
	}
	if cfg.MaxTokens != 2000 {
		t.Fatalf("expected max tokens 2000, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.3 {
		t.Fatalf("expected temperature 0.3, got %v", cfg.Temperature)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
}

func TestLoadEnvOverridesDotenv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dotenv := "PORT=9000\nLLM_PROVIDER=anthropic\nANTHROPIC_API_KEY=\"from-file\"\nCLUBS_FILE=clubs.csv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "9100")
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://example")

	cfg := Load()
	if cfg.Port != "9100" {
		t.Fatalf("expected env to win over .env, got %q", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected normalized production env, got %q", cfg.Env)
	}
	if cfg.LLMProvider != llm.ProviderAnthropic {
		t.Fatalf("expected anthropic provider from .env, got %q", cfg.LLMProvider)
	}
	if cfg.ClubsFile != "clubs.csv" {
		t.Fatalf("expected clubs file from .env, got %q", cfg.ClubsFile)
	}

	settings := cfg.LLMSettings()
	if settings.APIKey != "from-file" {
		t.Fatalf("expected anthropic key selected, got %q", settings.APIKey)
	}
}

func TestLLMSettingsSelectsProviderKey(t *testing.T) {
	cfg := Config{
		LLMProvider:     llm.ProviderGemini,
		OpenAIAPIKey:    "oa",
		AnthropicAPIKey: "an",
		GeminiAPIKey:    "ge",
		MaxTokens:       100,
	}
	if got := cfg.LLMSettings().APIKey; got != "ge" {
		t.Fatalf("expected gemini key, got %q", got)
	}
	cfg.LLMProvider = llm.ProviderOpenAI
	if got := cfg.LLMSettings().APIKey; got != "oa" {
		t.Fatalf("expected openai key, got %q", got)
	}
}
