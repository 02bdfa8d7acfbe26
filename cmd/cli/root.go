package cli

import (
	"fmt"
	"os"

	"quotegen-backend/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quotegen",
	Short: "Generate quotation documents from customer emails",
	Long:  "Extracts quotation data from a customer email with an LLM and renders it as a Word document",
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("provider", "gemini", "AI provider: 'gemini', 'ollama' or 'auto'")
	rootCmd.PersistentFlags().String("gemini-model", "gemini-2.5-flash", "Gemini model name")
	rootCmd.PersistentFlags().String("ollama-url", "http://localhost:11434", "Ollama base URL")
	rootCmd.PersistentFlags().String("ollama-model", "llama3", "Ollama model name")

	// Bind flags to viper
	viper.BindPFlag(config.KeyAIProvider, rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag(config.KeyGeminiModel, rootCmd.PersistentFlags().Lookup("gemini-model"))
	viper.BindPFlag(config.KeyOllamaBaseURL, rootCmd.PersistentFlags().Lookup("ollama-url"))
	viper.BindPFlag(config.KeyOllamaModel, rootCmd.PersistentFlags().Lookup("ollama-model"))

	rootCmd.AddCommand(serveCmd, generateCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func loadConfig() *config.Config {
	return config.Load(viper.GetViper())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
