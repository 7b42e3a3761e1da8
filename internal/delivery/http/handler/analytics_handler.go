package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phani-001/FixMyTown/internal/service"
)

type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.analytics.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func (h *AnalyticsHandler) Categories(c *gin.Context) {
	categories, err := h.analytics.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute category counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
	})
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	trends, err := h.analytics.Trends(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trends":  trends,
	})
}
