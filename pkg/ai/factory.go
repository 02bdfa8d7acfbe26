package ai

import (
	"fmt"

	"quotegen-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Server-side Gemini key; only used to decide what "auto" means
	GeminiAPIKey string

	// Dynamic getters so settings changes apply without a restart
	GetGeminiModel   func() string
	GeminiBaseURL    string // empty means the public endpoint
	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewCompletionService creates a CompletionService based on the config.
// Switch AI provider by changing cfg.Provider.
func NewCompletionService(cfg Config) (CompletionService, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		return newGemini(cfg), nil

	case ProviderOllama:
		return newOllama(cfg), nil

	case ProviderAuto:
		// Gemini if the server has a key, otherwise the local model
		if cfg.GeminiAPIKey != "" {
			return newGemini(cfg), nil
		}
		return newOllama(cfg), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func newGemini(cfg Config) CompletionService {
	getModel := cfg.GetGeminiModel
	if getModel == nil {
		getModel = func() string { return gemini.DefaultModel }
	}
	return gemini.NewGeminiService(getModel, cfg.GeminiBaseURL)
}

func newOllama(cfg Config) CompletionService {
	if cfg.GetOllamaBaseURL == nil || cfg.GetOllamaModel == nil {
		return NewOllamaService("", "")
	}
	return NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)
}
