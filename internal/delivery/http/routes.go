package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shopassist/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(PerMinute(cfg.RateLimit.PerIP)))
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.POST("/search", handler.SearchProducts)
			products.POST("/rank", handler.RankProducts)
			products.POST("/refresh", handler.RefreshCatalog)
			products.GET("/suggestions", handler.Suggestions)
			products.GET("/:id", handler.GetProduct)
		}

		v1.POST("/chat", RateLimitMiddleware(PerHour(cfg.RateLimit.Assistant)), handler.Chat)
		v1.POST("/ai/llm", handler.MockLLM)
	}

	return router
}
