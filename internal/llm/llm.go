package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.3
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderGemini:    "gemini-2.5-flash",
}

// ErrNotConfigured is returned when no usable provider credentials are present.
var ErrNotConfigured = errors.New("llm not configured")

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Configured reports whether the client has the credentials it needs.
	Configured() bool
}

// Settings selects and parameterizes a provider.
type Settings struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string
}

// WithDefaults fills unset fields with provider defaults.
func (s Settings) WithDefaults() Settings {
	s.Provider = NormalizeProvider(s.Provider)
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = defaultModels[s.Provider]
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if s.Temperature < 0 {
		s.Temperature = DefaultTemperature
	}
	if s.Timeout <= 0 {
		s.Timeout = 120 * time.Second
	}
	s.APIKey = strings.TrimSpace(s.APIKey)
	return s
}

// NormalizeProvider maps a configured provider name onto a known provider.
func NormalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderAnthropic, "claude":
		return ProviderAnthropic
	case ProviderGemini, "google":
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

// Unconfigured is the client used when a provider could not be built.
type Unconfigured struct {
	Reason string
}

// Generate always fails with ErrNotConfigured.
func (u Unconfigured) Generate(context.Context, string) (string, error) {
	if u.Reason == "" {
		return "", ErrNotConfigured
	}
	return "", fmt.Errorf("%w: %s", ErrNotConfigured, u.Reason)
}

// Configured is always false.
func (Unconfigured) Configured() bool { return false }
