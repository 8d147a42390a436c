package handler

import (
	"net/http"

	"smart-tutor-go/internal/middleware"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/service"
	"smart-tutor-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// MemoryHandler exposes the personalization memory endpoints.
type MemoryHandler struct {
	memoryService service.MemoryService
}

func NewMemoryHandler(memoryService service.MemoryService) *MemoryHandler {
	return &MemoryHandler{memoryService: memoryService}
}

// Export handles GET /api/v1/memory.
func (h *MemoryHandler) Export(c *gin.Context) {
	userID := middleware.UserID(c)
	snapshot, err := h.memoryService.Export(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("[MemoryHandler] export failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export memory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": snapshot, "message": "success"})
}

// Import handles PUT /api/v1/memory.
func (h *MemoryHandler) Import(c *gin.Context) {
	var snapshot model.MemorySnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid memory snapshot"})
		return
	}
	// imports are scoped to the authenticated learner
	snapshot.UserID = middleware.UserID(c)

	if err := h.memoryService.Import(c.Request.Context(), snapshot); err != nil {
		log.Errorf("[MemoryHandler] import failed for user %s: %v", snapshot.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import memory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "memory imported"})
}

// Clear handles DELETE /api/v1/memory?kind=session|long_term|all.
func (h *MemoryHandler) Clear(c *gin.Context) {
	userID := middleware.UserID(c)
	kind := c.DefaultQuery("kind", "session")

	if err := h.memoryService.Clear(c.Request.Context(), userID, kind); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "memory cleared"})
}

type topicFeedbackRequest struct {
	Topic   string `json:"topic" binding:"required"`
	Correct *bool  `json:"correct" binding:"required"`
}

// TopicFeedback handles POST /api/v1/memory/feedback: one assessment
// outcome for a topic.
func (h *MemoryHandler) TopicFeedback(c *gin.Context) {
	var req topicFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic and correct are required"})
		return
	}

	userID := middleware.UserID(c)
	if err := h.memoryService.TopicFeedback(c.Request.Context(), userID, req.Topic, *req.Correct); err != nil {
		log.Errorf("[MemoryHandler] feedback failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "feedback recorded"})
}
