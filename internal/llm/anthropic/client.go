package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/25eliu/ClubApp/internal/llm"
)

// Client implements llm.Client on the Anthropic Messages API.
type Client struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewClient constructs a Messages client. SDK-level retries are disabled;
// callers wrap the client in llm.Retrying instead.
func NewClient(s llm.Settings) (*Client, error) {
	s = s.WithDefaults()
	if s.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(s.Timeout),
	}
	if base := strings.TrimSpace(s.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Client{
		client:      sdk.NewClient(opts...),
		model:       s.Model,
		maxTokens:   int64(s.MaxTokens),
		temperature: s.Temperature,
	}, nil
}

// Configured is always true for a constructed client.
func (c *Client) Configured() bool { return c != nil }

// Generate sends prompt as a single user turn and concatenates the text blocks of the reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(c.temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic response empty content")
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
