package api

import (
	"log"

	"quotegen-backend/internal/quotation/delivery"
	"quotegen-backend/internal/quotation/render"
	"quotegen-backend/internal/quotation/usecase"
	"quotegen-backend/pkg/ai"
	"quotegen-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config           *config.Config
	quotationUsecase usecase.QuotationUsecase
	quotationHandler *delivery.QuotationHandler
}

func NewHandler(cfg *config.Config) *Handler {
	// Initialize runtime config for settings API
	InitRuntimeConfig(cfg)

	quotationUc := usecase.NewQuotationUsecase(render.NewDocxRenderer(), nil)
	quotationUc.SetDefaultCredential(cfg.GeminiAPIKey)

	// Initialize AI service with dynamic config getters for runtime updates
	aiService, err := NewCompletionService(ai.ProviderType(cfg.AIProvider))
	if err != nil {
		log.Printf("[AI] Warning: Failed to initialize AI service: %v", err)
	} else {
		quotationUc.SetCompletionService(aiService)
		log.Printf("[AI] AI service initialized with provider: %s (dynamic config enabled)", aiService.Name())
	}
	if cfg.GeminiAPIKey != "" {
		log.Println("[AI] Server-side GEMINI_API_KEY set; requests may omit api_key")
	}

	return &Handler{
		config:           cfg,
		quotationUsecase: quotationUc,
		quotationHandler: delivery.NewQuotationHandler(quotationUc, cfg.MaxUploadMB<<20),
	}
}

// NewCompletionService builds a provider that reads model and URL from the runtime settings
func NewCompletionService(provider ai.ProviderType) (ai.CompletionService, error) {
	return ai.NewCompletionService(ai.Config{
		Provider:         provider,
		GeminiAPIKey:     GetRuntimeServerKey(),
		GetGeminiModel:   GetRuntimeGeminiModel,
		GeminiBaseURL:    GetRuntimeGeminiBaseURL(),
		GetOllamaBaseURL: GetRuntimeOllamaBaseURL,
		GetOllamaModel:   GetRuntimeOllamaModel,
	})
}

// Router builds the engine with middleware and routes
func (h *Handler) Router() *gin.Engine {
	if h.config.GinMode != "" {
		gin.SetMode(h.config.GinMode)
	}
	r := gin.Default()
	r.Use(CORSMiddleware(), RequestIDMiddleware())

	// Setup routes
	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	return h.Router().Run(addr)
}
