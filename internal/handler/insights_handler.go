package handler

import (
	"net/http"
	"strconv"

	"smart-tutor-go/internal/middleware"
	"smart-tutor-go/internal/service"
	"smart-tutor-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// InsightsHandler exposes the learning analytics endpoint.
type InsightsHandler struct {
	analyticsService service.AnalyticsService
}

func NewInsightsHandler(analyticsService service.AnalyticsService) *InsightsHandler {
	return &InsightsHandler{analyticsService: analyticsService}
}

// Insights handles GET /api/v1/insights.
func (h *InsightsHandler) Insights(c *gin.Context) {
	userID := middleware.UserID(c)
	insights, err := h.analyticsService.Insights(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("[InsightsHandler] insights failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": insights, "message": "success"})
}

// History handles GET /api/v1/history?limit=.
func (h *InsightsHandler) History(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	interactions, err := h.analyticsService.History(c.Request.Context(), userID, limit)
	if err != nil {
		log.Errorf("[InsightsHandler] history failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": interactions, "message": "success"})
}
