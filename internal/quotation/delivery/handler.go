package delivery

import (
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"quotegen-backend/internal/quotation/domain"
	"quotegen-backend/internal/quotation/dto"
	"quotegen-backend/internal/quotation/usecase"
	"quotegen-backend/pkg/eml"

	"github.com/gin-gonic/gin"
)

const (
	msgSuccess       = "見積書データが正常に生成されました。"
	hintSuccess      = "ダウンロードしたWordファイルを開き、レイアウトを調整してご利用ください。"
	msgNeedAPIKey    = "API Keyを入力してください。"
	msgNeedBothTexts = "メール本文と会社情報の両方を入力してください。"
	msgMalformed     = "AIからの応答がJSON形式ではありませんでした。プロンプトを見直すか、再度お試しください。"
	msgFailed        = "エラーが発生しました。"
	hintFailed       = "APIキーやデータ形式が正しいか、ネットワーク接続を確認してください。"
)

//go:embed web/index.html
var indexHTML []byte

// QuotationHandler handles quotation HTTP requests
type QuotationHandler struct {
	quotationUsecase usecase.QuotationUsecase
	maxUploadBytes   int64
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationUsecase usecase.QuotationUsecase, maxUploadBytes int64) *QuotationHandler {
	return &QuotationHandler{
		quotationUsecase: quotationUsecase,
		maxUploadBytes:   maxUploadBytes,
	}
}

// Index serves the input form
// GET /
func (h *QuotationHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// Generate returns the record preview and the document as base64
// POST /api/quotations
func (h *QuotationHandler) Generate(c *gin.Context) {
	result, ok := h.generate(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.QuotationResponse{
		RequestID: c.GetString("requestID"),
		Message:   msgSuccess,
		Hint:      hintSuccess,
		FileName:  result.Document.FileName,
		MIMEType:  result.Document.MIMEType,
		Document:  base64.StdEncoding.EncodeToString(result.Document.Bytes),
		Record:    result.Record,
	})
}

// Download returns the document itself as an attachment
// POST /api/quotations/download
func (h *QuotationHandler) Download(c *gin.Context) {
	result, ok := h.generate(c)
	if !ok {
		return
	}

	doc := result.Document
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Data(http.StatusOK, doc.MIMEType, doc.Bytes)
}

func (h *QuotationHandler) generate(c *gin.Context) (*usecase.Result, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var req dto.GenerateQuotationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	emailBody := req.EmailBody
	if strings.TrimSpace(emailBody) == "" && req.EmailFile != nil {
		text, err := readEmailFile(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		emailBody = text
	}

	result, err := h.quotationUsecase.Generate(c.Request.Context(), domain.QuotationRequest{
		EmailBody:  emailBody,
		IssuerInfo: req.CompanyInfo,
		Credential: req.APIKey,
	})
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return result, true
}

func readEmailFile(req dto.GenerateQuotationRequest) (string, error) {
	f, err := req.EmailFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open email file: %w", err)
	}
	defer f.Close()

	msg, err := eml.Parse(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse email file: %w", err)
	}
	log.Printf("[Quotation] Using uploaded email %q (%d bytes of text)", req.EmailFile.Filename, len(msg.Body))
	return msg.Text(), nil
}

// writeError maps a pipeline error to its status code and user-facing message
func writeError(c *gin.Context, err error) {
	resp := dto.ErrorResponse{
		RequestID: c.GetString("requestID"),
		Error:     err.Error(),
		Category:  domain.Category(err),
		Message:   msgFailed,
		Hint:      hintFailed,
	}
	status := http.StatusInternalServerError

	var missing *domain.MissingInputError
	var upstream *domain.UpstreamError
	var malformed *domain.MalformedOutputError
	switch {
	case errors.As(err, &missing):
		status = http.StatusBadRequest
		resp.Field = missing.Field
		resp.Hint = ""
		resp.Message = msgNeedBothTexts
		if missing.Field == domain.FieldCredential {
			resp.Message = msgNeedAPIKey
		}
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
		resp.Reason = upstream.Reason
	case errors.As(err, &malformed):
		status = http.StatusUnprocessableEntity
		resp.Message = msgMalformed
		resp.Hint = ""
		resp.RawReply = malformed.Raw
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[Quotation] Request %s failed: %v", resp.RequestID, err)
	}
	c.JSON(status, resp)
}
