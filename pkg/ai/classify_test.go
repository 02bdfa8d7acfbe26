package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"gemini 429", fmt.Errorf("gemini generate content: %w", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}), ReasonQuota},
		{"gemini 403", genai.APIError{Code: 403, Message: "forbidden"}, ReasonAuth},
		{"gemini bad key as 400", genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"}, ReasonAuth},
		{"ollama 401", &StatusError{Provider: "ollama", Code: 401}, ReasonAuth},
		{"quota text", errors.New("rate limit exceeded"), ReasonQuota},
		{"refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), ReasonConnection},
		{"deadline", fmt.Errorf("request: %w", context.DeadlineExceeded), ReasonConnection},
		{"other", errors.New("something odd"), ReasonUnknown},
		{"gemini 500", genai.APIError{Code: 500, Message: "internal"}, ReasonUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
	assert.Equal(t, "", ClassifyError(nil))
}

func TestNewCompletionService(t *testing.T) {
	svc, err := NewCompletionService(Config{Provider: ProviderGemini})
	assert.NoError(t, err)
	assert.True(t, svc.RequiresCredential())

	svc, err = NewCompletionService(Config{Provider: ProviderOllama})
	assert.NoError(t, err)
	assert.False(t, svc.RequiresCredential())

	svc, err = NewCompletionService(Config{Provider: ProviderAuto})
	assert.NoError(t, err)
	assert.Equal(t, "ollama/"+DefaultOllamaModel, svc.Name())

	svc, err = NewCompletionService(Config{Provider: ProviderAuto, GeminiAPIKey: "k"})
	assert.NoError(t, err)
	assert.True(t, svc.RequiresCredential())

	_, err = NewCompletionService(Config{Provider: "openai"})
	assert.Error(t, err)
}
