package usecase

import (
	"context"

	"quotegen-backend/internal/quotation/domain"
	"quotegen-backend/pkg/ai"
)

// QuotationUsecase defines the interface for quotation generation
type QuotationUsecase interface {
	// Generate validates the request, asks the model for quotation data and renders the document.
	// Errors carry one of the domain failure categories.
	Generate(ctx context.Context, req domain.QuotationRequest) (*Result, error)

	// RequiresCredential reports whether the current provider needs a per-request API key
	RequiresCredential() bool

	// SetCompletionService swaps the AI provider used by later calls
	SetCompletionService(svc ai.CompletionService)

	// SetDefaultCredential sets the key used when a request brings none
	SetDefaultCredential(key string)
}

// Renderer turns a record into document bytes
type Renderer interface {
	Render(rec *domain.QuotationRecord) ([]byte, error)
}

// Result is everything produced by one successful generation
type Result struct {
	Record   *domain.QuotationRecord
	Document *domain.RenderedDocument
	Reply    string // model reply as received, fence included
}
