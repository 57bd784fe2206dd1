package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/middleware"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/ratelimit"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Health    *HealthHandler
	Quotes    *QuoteHandler
	Pricing   *PricingHandler
	Templates *TemplateHandler
}

// RegisterRoutes mounts the health endpoints and the /api/v1 group.
// Everything under /api/v1 except info requires X-Organization-ID.
// Import endpoints are rate limited when importLimiter is non-nil.
func RegisterRoutes(router *gin.Engine, h Handlers, importLimiter *ratelimit.Limiter) {
	router.GET("/health", h.Health.Health)
	router.GET("/health/ready", h.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/info", h.Health.Info)

	scoped := v1.Group("", middleware.Organization())
	{
		scoped.POST("/quotes/generate", h.Quotes.Generate)

		pricing := scoped.Group("/pricing")
		{
			imports := pricing.Group("/import")
			if importLimiter != nil {
				imports.Use(middleware.RateLimit(importLimiter))
			}
			imports.POST("/csv", h.Pricing.ImportCSV)
			imports.POST("/pdf", h.Pricing.ImportPDF)

			pricing.GET("/imports", h.Pricing.ListImports)
			pricing.GET("/patterns", h.Pricing.ListPatterns)
		}

		templates := scoped.Group("/templates")
		{
			templates.POST("", h.Templates.Create)
			templates.POST("/generate", h.Templates.Generate)
			templates.GET("/:id", h.Templates.Get)
			templates.POST("/:id/mappings", h.Templates.AddMapping)
		}
	}
}
