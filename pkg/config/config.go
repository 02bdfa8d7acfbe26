package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys as seen by viper; the matching environment variable is the upper-case form
const (
	KeyPort          = "port"
	KeyAIProvider    = "ai_provider"
	KeyGeminiAPIKey  = "gemini_api_key"
	KeyGeminiModel   = "gemini_model"
	KeyGeminiBaseURL = "gemini_base_url"
	KeyOllamaBaseURL = "ollama_base_url"
	KeyOllamaModel   = "ollama_model"
	KeyGinMode       = "gin_mode"
	KeyMaxUploadMB   = "max_upload_mb"
)

type Config struct {
	Port          string
	AIProvider    string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OllamaBaseURL string
	OllamaModel   string
	GinMode       string
	MaxUploadMB   int64
}

// SetDefaults registers defaults and environment lookup on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyAIProvider, "gemini")
	v.SetDefault(KeyGeminiModel, "gemini-2.5-flash")
	v.SetDefault(KeyOllamaBaseURL, "http://localhost:11434")
	v.SetDefault(KeyOllamaModel, "llama3")
	v.SetDefault(KeyGinMode, "release")
	v.SetDefault(KeyMaxUploadMB, 10)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads .env if present, then resolves every key through v
func Load(v *viper.Viper) *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err == nil {
		log.Println("[Config] Loaded .env")
	}
	SetDefaults(v)

	return &Config{
		Port:          v.GetString(KeyPort),
		AIProvider:    strings.ToLower(v.GetString(KeyAIProvider)),
		GeminiAPIKey:  v.GetString(KeyGeminiAPIKey),
		GeminiModel:   v.GetString(KeyGeminiModel),
		GeminiBaseURL: v.GetString(KeyGeminiBaseURL),
		OllamaBaseURL: strings.TrimRight(v.GetString(KeyOllamaBaseURL), "/"),
		OllamaModel:   v.GetString(KeyOllamaModel),
		GinMode:       v.GetString(KeyGinMode),
		MaxUploadMB:   v.GetInt64(KeyMaxUploadMB),
	}
}
