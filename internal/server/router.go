// Package server exposes the estimate parser over HTTP.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
)

// NewRouter wires middleware and routes. db may be nil when history is disabled.
func NewRouter(h *EstimateHandler, db HealthChecker, logger *slog.Logger) *gin.Engine {
	logger = common.LoggerOrDefault(logger)
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), recovery(logger))

	router.GET("/health", health(db))

	v1 := router.Group("/v1")
	estimates := v1.Group("/estimates")
	estimates.POST("/parse", h.Parse)
	estimates.GET("/search", h.Search)
	estimates.GET("/history", h.ListHistory)
	estimates.GET("/history/:id", h.GetHistory)
	estimates.GET("/history/:id/export", h.ExportHistory)

	prices := v1.Group("/prices")
	prices.GET("/average", h.AveragePrice)
	prices.GET("/cheapest", h.CheapestPrice)
	prices.GET("/statistics", h.PriceStatistics)
	return router
}
