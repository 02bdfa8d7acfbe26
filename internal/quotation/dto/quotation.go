package dto

import (
	"mime/multipart"

	"quotegen-backend/internal/quotation/domain"
)

// GenerateQuotationRequest is accepted as JSON or as a (multipart) form
type GenerateQuotationRequest struct {
	APIKey      string                `form:"api_key" json:"api_key"`
	EmailBody   string                `form:"email_body" json:"email_body"`
	CompanyInfo string                `form:"company_info" json:"company_info"`
	EmailFile   *multipart.FileHeader `form:"email_file" json:"-"`
}

type QuotationResponse struct {
	RequestID string                  `json:"request_id,omitempty"`
	Message   string                  `json:"message"`
	Hint      string                  `json:"hint"`
	FileName  string                  `json:"file_name"`
	MIMEType  string                  `json:"mime_type"`
	Document  string                  `json:"document"` // base64
	Record    *domain.QuotationRecord `json:"record"`
}

type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RawReply  string `json:"raw_reply,omitempty"`
}
