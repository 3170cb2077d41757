package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/25eliu/ClubApp/internal/llm"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client on the Gemini API.
type Client struct {
	models      contentGenerator
	model       string
	maxTokens   int32
	temperature float32
}

// NewClient creates a client configured for the Gemini API backend.
func NewClient(ctx context.Context, s llm.Settings) (*Client, error) {
	s = s.WithDefaults()
	if s.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(s.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		models:      client.Models,
		model:       s.Model,
		maxTokens:   int32(s.MaxTokens),
		temperature: float32(s.Temperature),
	}, nil
}

// Configured is always true for a constructed client.
func (c *Client) Configured() bool { return c != nil && c.models != nil }

// Generate sends the prompt to Gemini and returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini response missing candidates")
	}

	var b strings.Builder
	if content := resp.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("gemini response empty content")
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
