package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	calls   atomic.Int32
	errs    []error
	text    string
	noCreds bool
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	n := int(s.calls.Add(1))
	if n <= len(s.errs) && s.errs[n-1] != nil {
		return "", s.errs[n-1]
	}
	return s.text, nil
}

func (s *scriptedClient) Configured() bool { return !s.noCreds }

func fastRetrying(base Client) *Retrying {
	r := NewRetrying(base)
	r.InitialInterval = time.Millisecond
	r.MaxInterval = 2 * time.Millisecond
	return r
}

func TestRetryingSucceedsAfterTransientFailures(t *testing.T) {
	base := &scriptedClient{
		errs: []error{errors.New("503"), errors.New("timeout")},
		text: `{"match_score": 70}`,
	}

	out, err := fastRetrying(base).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"match_score": 70}`, out)
	assert.EqualValues(t, 3, base.calls.Load())
}

func TestRetryingGivesUpAfterThreeAttempts(t *testing.T) {
	boom := errors.New("provider down")
	base := &scriptedClient{errs: []error{boom, boom, boom, boom}}

	_, err := fastRetrying(base).Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 3, base.calls.Load())
}

func TestRetryingDoesNotRetryUnconfigured(t *testing.T) {
	base := &scriptedClient{errs: []error{ErrNotConfigured, nil}}

	_, err := fastRetrying(base).Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.EqualValues(t, 1, base.calls.Load())
}

func TestRetryingHonoursCancellation(t *testing.T) {
	base := &scriptedClient{errs: []error{errors.New("503"), errors.New("503"), errors.New("503")}}
	r := NewRetrying(base)
	r.InitialInterval = time.Hour
	r.MaxInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Generate(ctx, "prompt")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Minute)
	assert.EqualValues(t, 1, base.calls.Load())
}

func TestRetryingDefaultsMatchPolicy(t *testing.T) {
	r := NewRetrying(&scriptedClient{})
	b := r.newBackOff()
	assert.Equal(t, 4*time.Second, b.NextBackOff())
	assert.Equal(t, 8*time.Second, b.NextBackOff())
	assert.Equal(t, 10*time.Second, b.NextBackOff())
}

func TestConfiguredDelegates(t *testing.T) {
	assert.True(t, NewRetrying(&scriptedClient{}).Configured())
	assert.False(t, NewRetrying(&scriptedClient{noCreds: true}).Configured())
	assert.False(t, NewRetrying(Unconfigured{}).Configured())
}

func TestSettingsWithDefaults(t *testing.T) {
	s := Settings{Provider: "Claude", Temperature: -1}.WithDefaults()
	assert.Equal(t, ProviderAnthropic, s.Provider)
	assert.Equal(t, "claude-sonnet-4-5", s.Model)
	assert.Equal(t, DefaultMaxTokens, s.MaxTokens)
	assert.Equal(t, DefaultTemperature, s.Temperature)

	s = Settings{}.WithDefaults()
	assert.Equal(t, ProviderOpenAI, s.Provider)
	assert.Equal(t, "gpt-4o-mini", s.Model)
}

func TestUnconfiguredGenerate(t *testing.T) {
	_, err := Unconfigured{Reason: "OPENAI_API_KEY is required"}.Generate(context.Background(), "p")
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
