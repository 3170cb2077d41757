package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/25eliu/ClubApp/internal/shared/telemetry"
)

const (
	defaultAttempts        = 3
	defaultInitialInterval = 4 * time.Second
	defaultMaxInterval     = 10 * time.Second
)

// Retrying retries a Client on any error with exponential backoff.
// Defaults are three attempts waiting 4s then 8s, capped at 10s, without jitter.
type Retrying struct {
	Base            Client
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewRetrying wraps base with the default retry policy.
func NewRetrying(base Client) *Retrying {
	return &Retrying{
		Base:            base,
		MaxAttempts:     defaultAttempts,
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
	}
}

// Configured delegates to the wrapped client.
func (r *Retrying) Configured() bool {
	return r != nil && r.Base != nil && r.Base.Configured()
}

// Generate calls the wrapped client until it succeeds, attempts run out or ctx ends.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	if r == nil || r.Base == nil {
		return "", ErrNotConfigured
	}

	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(attempts-1)), ctx)

	var (
		out     string
		attempt int
	)
	op := func() error {
		attempt++
		text, err := r.Base.Generate(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		out = text
		return nil
	}
	notify := func(err error, wait time.Duration) {
		telemetry.Warn("llm.retry", map[string]any{
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   err,
		})
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", fmt.Errorf("llm generate failed after %d attempt(s): %w", attempt, err)
	}
	return out, nil
}

func (r *Retrying) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultInitialInterval
	}
	b.MaxInterval = r.MaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = defaultMaxInterval
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
