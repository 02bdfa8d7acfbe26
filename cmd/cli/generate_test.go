package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quotegen-backend/internal/quotation/domain"
	"quotegen-backend/internal/quotation/render"
	"quotegen-backend/internal/quotation/usecase"
	"quotegen-backend/pkg/ai"
	"quotegen-backend/pkg/config"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const licenseReply = "```json\n" + `{"見積先名":"株式会社XX","明細":[{"品目":"システムライセンス","単価":12000,"数量":50,"単位":"ライセンス"}],"合計金額_税抜":600000,"合計金額_税込":660000}` + "\n```"

func ollamaUsecase(t *testing.T, reply string) (usecase.QuotationUsecase, *string) {
	t.Helper()
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		prompt = payload.Prompt
		_ = json.NewEncoder(w).Encode(map[string]any{"response": reply, "done": true})
	}))
	t.Cleanup(srv.Close)

	svc := ai.NewOllamaService(srv.URL, "llama3")
	return usecase.NewQuotationUsecase(render.NewDocxRenderer(), svc), &prompt
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunGenerateWritesDocument(t *testing.T) {
	dir := t.TempDir()
	uc, prompt := ollamaUsecase(t, licenseReply)
	opts := generateOptions{
		emailPath:   writeFile(t, dir, "mail.txt", "システムライセンス: 50ライセンス"),
		companyPath: writeFile(t, dir, "company.txt", "会社名: △△合同会社"),
		outDir:      filepath.Join(dir, "out"),
		printRecord: true,
	}

	var stdout, stderr bytes.Buffer
	require.NoError(t, runGenerate(context.Background(), uc, opts, &stdout, &stderr))

	assert.Contains(t, *prompt, "システムライセンス: 50ライセンス")
	assert.Contains(t, *prompt, "会社名: △△合同会社")
	assert.Contains(t, stdout.String(), `"見積先名": "株式会社XX"`)
	assert.Contains(t, stdout.String(), "(1 items)")

	entries, err := os.ReadDir(opts.outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "quotation_"))
	assert.True(t, strings.HasSuffix(name, ".docx"))

	f, err := os.Open(filepath.Join(opts.outDir, name))
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	doc, err := docx.Parse(f, info.Size())
	require.NoError(t, err)

	var text strings.Builder
	for _, it := range doc.Document.Body.Items {
		if p, ok := it.(*docx.Paragraph); ok {
			text.WriteString(p.String())
			text.WriteString("\n")
		}
	}
	assert.Contains(t, text.String(), "株式会社XX 様")
	assert.Contains(t, text.String(), "¥660,000")
}

func TestRunGenerateFromEML(t *testing.T) {
	dir := t.TempDir()
	uc, prompt := ollamaUsecase(t, licenseReply)
	opts := generateOptions{
		emlPath: writeFile(t, dir, "request.eml",
			"Subject: Quote\r\nFrom: buyer@example.com\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\nライセンス50本\r\n"),
		companyPath: writeFile(t, dir, "company.txt", "X社"),
		outDir:      dir,
	}

	var stdout, stderr bytes.Buffer
	require.NoError(t, runGenerate(context.Background(), uc, opts, &stdout, &stderr))
	assert.Contains(t, *prompt, "件名: Quote\n差出人: buyer@example.com\n\nライセンス50本")
}

func TestRunGenerateMalformedReply(t *testing.T) {
	dir := t.TempDir()
	uc, _ := ollamaUsecase(t, "申し訳ありませんが対応できません")
	opts := generateOptions{
		emailPath:   writeFile(t, dir, "mail.txt", "見積をお願いします"),
		companyPath: writeFile(t, dir, "company.txt", "X社"),
		outDir:      filepath.Join(dir, "out"),
	}

	var stdout, stderr bytes.Buffer
	err := runGenerate(context.Background(), uc, opts, &stdout, &stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
	assert.Contains(t, err.Error(), domain.CategoryMalformedOutput)
	assert.Contains(t, stderr.String(), "申し訳ありませんが対応できません")

	_, statErr := os.Stat(opts.outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunGenerateNeedsEmail(t *testing.T) {
	dir := t.TempDir()
	uc, _ := ollamaUsecase(t, licenseReply)
	opts := generateOptions{companyPath: writeFile(t, dir, "company.txt", "X社"), outDir: dir}

	err := runGenerate(context.Background(), uc, opts, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestStaticAIConfig(t *testing.T) {
	cfg := &config.Config{AIProvider: "ollama", OllamaBaseURL: "http://ollama:11434", OllamaModel: "qwen2"}
	svc, err := ai.NewCompletionService(staticAIConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, "ollama/qwen2", svc.Name())
	assert.False(t, svc.RequiresCredential())
}
