package ai

import (
	"context"
)

// CompletionService sends one prompt to a language model and returns its text reply.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type CompletionService interface {
	// GenerateText runs a single completion. credential may be empty for providers that do not need one.
	GenerateText(ctx context.Context, credential, prompt string) (string, error)
	// RequiresCredential reports whether callers must supply a credential
	RequiresCredential() bool
	Name() string
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
