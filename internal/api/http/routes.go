package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/monitoring"
)

// Register mounts every route on router
func (h *Handlers) Register(router *gin.Engine, gatherer prometheus.Gatherer) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(monitoring.Handler(gatherer)))

	tools := router.Group("/tools")
	{
		tools.GET("", h.ListTools)
		tools.GET("/:name", h.DescribeTool)
		tools.POST("/search", h.SearchTools)
		tools.POST("/validate", h.ValidateTool)
		tools.POST("/resolve", h.ResolveDependencies)
		tools.POST("/execute", h.ExecuteTool)
		tools.POST("/estimate", h.EstimateCost)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/index/rebuild", h.RebuildIndex)
		admin.POST("/cache/clear", h.ClearCache)
		admin.POST("/ratelimit/reset", h.ResetRateLimit)
		admin.GET("/stats", h.Stats)
	}
}
