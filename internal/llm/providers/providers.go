// Package providers builds the configured llm.Client.
package providers

import (
	"context"

	"github.com/25eliu/ClubApp/internal/llm"
	"github.com/25eliu/ClubApp/internal/llm/anthropic"
	"github.com/25eliu/ClubApp/internal/llm/gemini"
	"github.com/25eliu/ClubApp/internal/llm/openai"
	"github.com/25eliu/ClubApp/internal/shared/telemetry"
)

// New returns a retrying client for the configured provider. Missing
// credentials yield an llm.Unconfigured client instead of an error so the
// service can still serve cached analyses.
func New(ctx context.Context, s llm.Settings) llm.Client {
	s = s.WithDefaults()

	var (
		client llm.Client
		err    error
	)
	switch s.Provider {
	case llm.ProviderAnthropic:
		client, err = anthropic.NewClient(s)
	case llm.ProviderGemini:
		client, err = gemini.NewClient(ctx, s)
	default:
		client, err = openai.NewClient(s)
	}
	if err != nil {
		telemetry.Warn("llm.unconfigured", map[string]any{
			"provider": s.Provider,
			"model":    s.Model,
			"reason":   err,
		})
		return llm.Unconfigured{Reason: err.Error()}
	}

	telemetry.Info("llm.configured", map[string]any{
		"provider":    s.Provider,
		"model":       s.Model,
		"max_tokens":  s.MaxTokens,
		"temperature": s.Temperature,
	})
	return llm.NewRetrying(client)
}
