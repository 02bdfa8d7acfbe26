package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quotegen-backend/internal/quotation/domain"
	"quotegen-backend/internal/quotation/dto"
	"quotegen-backend/internal/quotation/usecase"
	"quotegen-backend/pkg/ai"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	got    domain.QuotationRequest
	result *usecase.Result
	err    error
}

func (s *stubUsecase) Generate(_ context.Context, req domain.QuotationRequest) (*usecase.Result, error) {
	s.got = req
	return s.result, s.err
}

func (s *stubUsecase) RequiresCredential() bool               { return true }
func (s *stubUsecase) SetCompletionService(ai.CompletionService) {}
func (s *stubUsecase) SetDefaultCredential(string)              {}

func okResult() *usecase.Result {
	rec := domain.NewQuotationRecord()
	rec.ClientName = "ABC社"
	return &usecase.Result{
		Record: rec,
		Document: &domain.RenderedDocument{
			FileName: "quotation_20240101_120000.docx",
			MIMEType: usecase.DocxMIMEType,
			Bytes:    []byte("PK-docx"),
		},
	}
}

func newRouter(uc usecase.QuotationUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewQuotationHandler(uc, 1<<20)
	r.GET("/", h.Index)
	r.POST("/api/quotations", h.Generate)
	r.POST("/api/quotations/download", h.Download)
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var validBody = map[string]string{
	"api_key":      "key",
	"email_body":   "見積をお願いします",
	"company_info": "X社",
}

func TestGenerateReturnsPreview(t *testing.T) {
	uc := &stubUsecase{result: okResult()}
	w := postJSON(newRouter(uc), "/api/quotations", validBody)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		FileName string         `json:"file_name"`
		MIMEType string         `json:"mime_type"`
		Document string         `json:"document"`
		Message  string         `json:"message"`
		Record   map[string]any `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "quotation_20240101_120000.docx", resp.FileName)
	assert.Equal(t, usecase.DocxMIMEType, resp.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("PK-docx")), resp.Document)
	assert.Equal(t, msgSuccess, resp.Message)
	assert.Equal(t, "ABC社", resp.Record["見積先名"])

	assert.Equal(t, domain.QuotationRequest{EmailBody: "見積をお願いします", IssuerInfo: "X社", Credential: "key"}, uc.got)
}

func TestDownloadReturnsAttachment(t *testing.T) {
	w := postJSON(newRouter(&stubUsecase{result: okResult()}), "/api/quotations/download", validBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecase.DocxMIMEType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="quotation_20240101_120000.docx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-docx", w.Body.String())
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
		check    func(t *testing.T, resp dto.ErrorResponse)
	}{
		{
			name: "missing credential", err: &domain.MissingInputError{Field: domain.FieldCredential},
			status: http.StatusBadRequest, category: domain.CategoryMissingInput,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, domain.FieldCredential, resp.Field)
				assert.Equal(t, msgNeedAPIKey, resp.Message)
			},
		},
		{
			name: "missing company info", err: &domain.MissingInputError{Field: domain.FieldCompanyInfo},
			status: http.StatusBadRequest, category: domain.CategoryMissingInput,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, msgNeedBothTexts, resp.Message)
			},
		},
		{
			name: "upstream", err: &domain.UpstreamError{Reason: ai.ReasonAuth, Err: errors.New("401")},
			status: http.StatusBadGateway, category: domain.CategoryUpstreamFailure,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, ai.ReasonAuth, resp.Reason)
				assert.Equal(t, hintFailed, resp.Hint)
			},
		},
		{
			name: "malformed", err: &domain.MalformedOutputError{Raw: "not json at all", Err: errors.New("invalid")},
			status: http.StatusUnprocessableEntity, category: domain.CategoryMalformedOutput,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Equal(t, "not json at all", resp.RawReply)
				assert.Equal(t, msgMalformed, resp.Message)
			},
		},
		{
			name: "record shape", err: &domain.RecordError{Field: domain.KeyItems, Reason: "expected a list"},
			status: http.StatusInternalServerError, category: domain.CategoryProcessingFailure,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				assert.Contains(t, resp.Error, domain.KeyItems)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(newRouter(&stubUsecase{err: tt.err}), "/api/quotations", validBody)
			require.Equal(t, tt.status, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.category, resp.Category)
			tt.check(t, resp)
		})
	}
}

func TestGenerateMultipartWithEmailFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("api_key", "key"))
	require.NoError(t, mw.WriteField("company_info", "X社"))
	fw, err := mw.CreateFormFile("email_file", "request.eml")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Subject: Quote\r\nFrom: buyer@example.com\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\nライセンス50本\r\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	uc := &stubUsecase{result: okResult()}
	req := httptest.NewRequest(http.MethodPost, "/api/quotations", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "件名: Quote\n差出人: buyer@example.com\n\nライセンス50本", uc.got.EmailBody)
	assert.Equal(t, "X社", uc.got.IssuerInfo)
}

func TestGenerateRejectsBadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/quotations", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newRouter(&stubUsecase{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexServesForm(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&stubUsecase{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `name="email_body"`)
	assert.Contains(t, w.Body.String(), `name="company_info"`)
}
