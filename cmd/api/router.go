package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", h.quotationHandler.Index)

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		quotations := api.Group("/quotations")
		{
			quotations.POST("", h.quotationHandler.Generate)
			quotations.POST("/download", h.quotationHandler.Download)
		}

		// Settings routes (public) - Runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ai", h.GetAISettings)
			settings.PUT("/ai", h.UpdateAISettings)
			settings.POST("/ai/test", TestOllamaConnection)
		}
	}
}
