// Package handler contains the Gin HTTP handlers.
package handler

import (
	"net/http"

	"smart-tutor-go/internal/middleware"
	"smart-tutor-go/internal/service"
	"smart-tutor-go/internal/validator"
	"smart-tutor-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AnswerHandler serves the question-answering endpoint.
type AnswerHandler struct {
	answerService service.AnswerService
}

func NewAnswerHandler(answerService service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// Ask handles POST /api/v1/ask.
func (h *AnswerHandler) Ask(c *gin.Context) {
	var req service.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[AnswerHandler] invalid ask request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	userID := middleware.UserID(c)
	answer, err := h.answerService.Ask(c.Request.Context(), userID, req)
	if err != nil {
		log.Errorf("[AnswerHandler] ask failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer the question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"answer":             answer.Text,
			"language":           answer.Language,
			"level":              answer.Level,
			"sources":            answer.Sources,
			"validation":         answer.Report,
			"validation_summary": validator.Summary(answer.Report),
		},
		"message": "success",
	})
}
