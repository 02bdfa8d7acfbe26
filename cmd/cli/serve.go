package cli

import (
	"log"

	api "quotegen-backend/cmd/api"
	"quotegen-backend/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service and web form",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		handler := api.NewHandler(cfg)

		log.Printf("Server starting on port %s", cfg.Port)
		return handler.Start(":" + cfg.Port)
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "HTTP listen port")
	viper.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))
}
