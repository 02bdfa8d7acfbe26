package api

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"quotegen-backend/pkg/ai"
	"quotegen-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	Provider      string `json:"provider"`
	GeminiModel   string `json:"gemini_model"`
	OllamaBaseURL string `json:"ollama_base_url"`
	OllamaModel   string `json:"ollama_model"`

	geminiBaseURL string
	serverKey     string
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(cfg *config.Config) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		Provider:      cfg.AIProvider,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
		geminiBaseURL: cfg.GeminiBaseURL,
		serverKey:     cfg.GeminiAPIKey,
	}
}

// GetRuntimeGeminiModel returns the current runtime Gemini model
func GetRuntimeGeminiModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.GeminiModel
}

// GetRuntimeOllamaBaseURL returns the current runtime Ollama base URL
func GetRuntimeOllamaBaseURL() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.OllamaBaseURL
}

// GetRuntimeOllamaModel returns the current runtime Ollama model
func GetRuntimeOllamaModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.OllamaModel
}

func GetRuntimeGeminiBaseURL() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.geminiBaseURL
}

func GetRuntimeServerKey() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.serverKey
}

// UpdateAISettingsRequest represents the request body for updating AI settings.
// Empty fields keep their current value.
type UpdateAISettingsRequest struct {
	Provider      string `json:"provider" binding:"omitempty,oneof=gemini ollama auto"`
	GeminiModel   string `json:"gemini_model"`
	OllamaBaseURL string `json:"ollama_base_url" binding:"omitempty,url"`
	OllamaModel   string `json:"ollama_model"`
}

func (h *Handler) settingsResponse() gin.H {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return gin.H{
		"provider":         runtimeConfig.Provider,
		"gemini_model":     runtimeConfig.GeminiModel,
		"ollama_base_url":  runtimeConfig.OllamaBaseURL,
		"ollama_model":     runtimeConfig.OllamaModel,
		"server_key_set":   runtimeConfig.serverKey != "",
		"requires_api_key": h.quotationUsecase.RequiresCredential(),
	}
}

// GetAISettings returns current AI configuration
// GET /api/settings/ai
func (h *Handler) GetAISettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsResponse())
}

// UpdateAISettings updates AI configuration at runtime
// PUT /api/settings/ai
func (h *Handler) UpdateAISettings(c *gin.Context) {
	var req UpdateAISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	previous := runtimeConfig.Provider
	if req.Provider != "" {
		runtimeConfig.Provider = req.Provider
	}
	if req.GeminiModel != "" {
		runtimeConfig.GeminiModel = req.GeminiModel
	}
	if req.OllamaBaseURL != "" {
		runtimeConfig.OllamaBaseURL = strings.TrimRight(req.OllamaBaseURL, "/")
	}
	if req.OllamaModel != "" {
		runtimeConfig.OllamaModel = req.OllamaModel
	}
	provider := runtimeConfig.Provider
	runtimeConfigLock.Unlock()

	// Model and URL changes are picked up by the getters; only a provider switch needs a new service
	if provider != previous {
		svc, err := NewCompletionService(ai.ProviderType(provider))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.quotationUsecase.SetCompletionService(svc)
		log.Printf("[AI] Provider switched from %s to %s", previous, svc.Name())
	}

	resp := h.settingsResponse()
	resp["message"] = "AI settings updated successfully"
	c.JSON(http.StatusOK, resp)
}

// TestOllamaConnection tests if the Ollama server is reachable
// POST /api/settings/ai/test
func TestOllamaConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		// If no body provided, use current config
		req.OllamaBaseURL = GetRuntimeOllamaBaseURL()
	}
	if req.OllamaBaseURL == "" {
		req.OllamaBaseURL = GetRuntimeOllamaBaseURL()
	}
	baseURL := strings.TrimRight(req.OllamaBaseURL, "/")

	models, err := ai.NewOllamaService(baseURL, "").Ping(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"reason":    ai.ClassifyError(err),
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": baseURL,
		"models":          models,
	})
}
