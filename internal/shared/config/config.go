package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/25eliu/ClubApp/internal/llm"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
	Env             string

	LLMProvider     string
	LLMModel        string
	MaxTokens       int
	Temperature     float64
	LLMTimeout      time.Duration
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	LogJSON  bool
	LogLevel string

	ClubsFile         string
	AnalyzeRatePerMin float64
	AnalyzeBurst      int
}

// envFiles are merged in order before environment variables are applied.
var envFiles = []string{".env", "cmd/.env"}

// Load reads configuration from env files and environment variables with sensible defaults.
func Load() Config {
	v := viper.New()
	setDefaults(v)

	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: skip %s: %v", path, err)
		}
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("LLM_PROVIDER", llm.ProviderOpenAI)
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("MAX_TOKENS", llm.DefaultMaxTokens)
	v.SetDefault("ANALYSIS_TEMPERATURE", llm.DefaultTemperature)
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ANALYZE_RATE_PER_MIN", 10)
	v.SetDefault("ANALYZE_BURST", 5)
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	timeout := time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return Config{
		Port:              v.GetString("PORT"),
		CORSAllowOrigin:   splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ObjectStoreType:   normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:     v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:         v.GetString("AWS_REGION"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Prefix:          v.GetString("S3_PREFIX"),
		SSEKMSKeyID:       v.GetString("SSE_KMS_KEY_ID"),
		DatabaseURL:       dbURL,
		Env:               env,
		LLMProvider:       llm.NormalizeProvider(v.GetString("LLM_PROVIDER")),
		LLMModel:          strings.TrimSpace(v.GetString("LLM_MODEL")),
		MaxTokens:         v.GetInt("MAX_TOKENS"),
		Temperature:       v.GetFloat64("ANALYSIS_TEMPERATURE"),
		LLMTimeout:        timeout,
		OpenAIAPIKey:      strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		AnthropicAPIKey:   strings.TrimSpace(v.GetString("ANTHROPIC_API_KEY")),
		GeminiAPIKey:      strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		LogJSON:           v.GetBool("LOG_JSON"),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		ClubsFile:         strings.TrimSpace(v.GetString("CLUBS_FILE")),
		AnalyzeRatePerMin: v.GetFloat64("ANALYZE_RATE_PER_MIN"),
		AnalyzeBurst:      v.GetInt("ANALYZE_BURST"),
	}
}

// LLMSettings returns the provider settings with the credential for the configured provider.
func (c Config) LLMSettings() llm.Settings {
	s := llm.Settings{
		Provider:    c.LLMProvider,
		Model:       c.LLMModel,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.LLMTimeout,
	}
	switch c.LLMProvider {
	case llm.ProviderAnthropic:
		s.APIKey = c.AnthropicAPIKey
	case llm.ProviderGemini:
		s.APIKey = c.GeminiAPIKey
	default:
		s.APIKey = c.OpenAIAPIKey
	}
	return s
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
