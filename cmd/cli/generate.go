package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"quotegen-backend/internal/quotation/domain"
	"quotegen-backend/internal/quotation/render"
	"quotegen-backend/internal/quotation/usecase"
	"quotegen-backend/pkg/ai"
	"quotegen-backend/pkg/config"
	"quotegen-backend/pkg/eml"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	emailPath   string
	emlPath     string
	companyPath string
	apiKey      string
	outDir      string
	printRecord bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quotation .docx from files",
	Long:  "Reads an email (plain text or .eml) and company details, asks the model for quotation data and writes the Word document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		cfg := loadConfig()
		svc, err := ai.NewCompletionService(staticAIConfig(cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize AI service: %w", err)
		}
		uc := usecase.NewQuotationUsecase(render.NewDocxRenderer(), svc)
		uc.SetDefaultCredential(cfg.GeminiAPIKey)

		return runGenerate(ctx, uc, genOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genOpts.emailPath, "email", "", "File holding the email body as plain text")
	f.StringVar(&genOpts.emlPath, "eml", "", "Raw .eml message to read the email from")
	f.StringVar(&genOpts.companyPath, "company", "", "File holding the issuing company's details")
	f.StringVar(&genOpts.apiKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	f.StringVar(&genOpts.outDir, "out", ".", "Directory to write the .docx into")
	f.BoolVar(&genOpts.printRecord, "print-record", false, "Print the extracted quotation data as JSON")
	generateCmd.MarkFlagsMutuallyExclusive("email", "eml")
	_ = generateCmd.MarkFlagRequired("company")
}

func staticAIConfig(cfg *config.Config) ai.Config {
	return ai.Config{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GetGeminiModel:   func() string { return cfg.GeminiModel },
		GeminiBaseURL:    cfg.GeminiBaseURL,
		GetOllamaBaseURL: func() string { return cfg.OllamaBaseURL },
		GetOllamaModel:   func() string { return cfg.OllamaModel },
	}
}

func runGenerate(ctx context.Context, uc usecase.QuotationUsecase, opts generateOptions, stdout, stderr io.Writer) error {
	emailBody, err := readEmail(opts)
	if err != nil {
		return err
	}
	company, err := os.ReadFile(opts.companyPath)
	if err != nil {
		return fmt.Errorf("failed to read company file: %w", err)
	}

	result, err := uc.Generate(ctx, domain.QuotationRequest{
		EmailBody:  emailBody,
		IssuerInfo: string(company),
		Credential: opts.apiKey,
	})
	if err != nil {
		var malformed *domain.MalformedOutputError
		if errors.As(err, &malformed) {
			fmt.Fprintln(stderr, "Model reply:")
			fmt.Fprintln(stderr, malformed.Raw)
		}
		return fmt.Errorf("%s: %w", domain.Category(err), err)
	}

	if opts.printRecord {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Record); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(opts.outDir, result.Document.FileName)
	if err := os.WriteFile(path, result.Document.Bytes, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %s (%d items)\n", path, len(result.Record.Items))
	return nil
}

func readEmail(opts generateOptions) (string, error) {
	switch {
	case opts.emlPath != "":
		f, err := os.Open(opts.emlPath)
		if err != nil {
			return "", fmt.Errorf("failed to open email file: %w", err)
		}
		defer f.Close()
		msg, err := eml.Parse(f)
		if err != nil {
			return "", err
		}
		return msg.Text(), nil
	case opts.emailPath != "":
		b, err := os.ReadFile(opts.emailPath)
		if err != nil {
			return "", fmt.Errorf("failed to read email file: %w", err)
		}
		return string(b), nil
	default:
		return "", &domain.MissingInputError{Field: domain.FieldEmailBody}
	}
}
