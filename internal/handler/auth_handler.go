package handler

import (
	"net/http"

	"smart-tutor-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler issues access tokens. Learner identity comes from an
// upstream identity provider in production; this endpoint lets a client
// mint a token for a known learner ID.
type AuthHandler struct {
	jwtManager *token.JWTManager
}

func NewAuthHandler(jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

type tokenRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Token handles POST /api/v1/auth/token. A missing user_id gets a fresh
// anonymous learner ID.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}
	if req.Name == "" {
		req.Name = "learner"
	}

	accessToken, err := h.jwtManager.GenerateToken(req.UserID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"user_id":      req.UserID,
			"access_token": accessToken,
		},
		"message": "success",
	})
}
