package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// ErrEmptyReply means the model answered without any text part
var ErrEmptyReply = errors.New("no text returned by Gemini")

type GeminiService struct {
	getModel func() string
	baseURL  string
}

// NewGeminiService creates a service that reads the model name on every call.
// baseURL overrides the public endpoint and may be empty.
func NewGeminiService(getModel func() string, baseURL string) *GeminiService {
	return &GeminiService{getModel: getModel, baseURL: baseURL}
}

func (g *GeminiService) Name() string { return "gemini/" + g.model() }

// RequiresCredential is true; every request is made with the caller's API key
func (g *GeminiService) RequiresCredential() bool { return true }

func (g *GeminiService) model() string {
	if m := g.getModel(); m != "" {
		return m
	}
	return DefaultModel
}

// GenerateText sends prompt as a single user turn and returns the reply text
func (g *GeminiService) GenerateText(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model(), genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
