package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"quotegen-backend/internal/quotation/domain"
	"quotegen-backend/pkg/ai"
)

const (
	DocxMIMEType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	fileNameLayout = "quotation_20060102_150405.docx"
)

// quotationUsecase implements QuotationUsecase interface
type quotationUsecase struct {
	renderer Renderer
	now      func() time.Time

	mu                sync.RWMutex
	completion        ai.CompletionService
	defaultCredential string
}

// NewQuotationUsecase creates a new instance of quotationUsecase
func NewQuotationUsecase(renderer Renderer, completion ai.CompletionService) QuotationUsecase {
	return &quotationUsecase{
		renderer:   renderer,
		completion: completion,
		now:        time.Now,
	}
}

func (u *quotationUsecase) SetCompletionService(svc ai.CompletionService) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.completion = svc
}

func (u *quotationUsecase) SetDefaultCredential(key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.defaultCredential = key
}

func (u *quotationUsecase) RequiresCredential() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.completion != nil && u.completion.RequiresCredential() && u.defaultCredential == ""
}

// FileName builds the download name from the generation time
func FileName(t time.Time) string {
	return t.Format(fileNameLayout)
}

func (u *quotationUsecase) Generate(ctx context.Context, req domain.QuotationRequest) (*Result, error) {
	u.mu.RLock()
	completion := u.completion
	if strings.TrimSpace(req.Credential) == "" {
		req.Credential = u.defaultCredential
	}
	u.mu.RUnlock()

	if completion == nil {
		return nil, errors.New("AI service not configured")
	}
	if err := req.Validate(completion.RequiresCredential()); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req.EmailBody, req.IssuerInfo)
	log.Printf("[Quotation] Requesting quotation data from %s", completion.Name())
	reply, err := completion.GenerateText(ctx, req.Credential, prompt)
	if err != nil {
		reason := ai.ClassifyError(err)
		log.Printf("[Quotation] Completion failed (%s): %v", reason, err)
		return nil, &domain.UpstreamError{Reason: reason, Err: err}
	}

	record, err := DecodeReply(reply)
	if err != nil {
		log.Printf("[Quotation] Could not use model reply: %v", err)
		return nil, err
	}

	data, err := u.renderer.Render(record)
	if err != nil {
		return nil, fmt.Errorf("failed to render quotation: %w", err)
	}

	doc := &domain.RenderedDocument{
		FileName: FileName(u.now()),
		MIMEType: DocxMIMEType,
		Bytes:    data,
	}
	log.Printf("[Quotation] Generated %s (%d items, %d bytes)", doc.FileName, len(record.Items), len(data))

	return &Result{Record: record, Document: doc, Reply: reply}, nil
}
