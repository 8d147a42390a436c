package handler

import (
	"net/http"
	"strconv"

	"smart-tutor-go/internal/service"
	"smart-tutor-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves direct corpus search.
type SearchHandler struct {
	documentService service.DocumentService
}

func NewSearchHandler(documentService service.DocumentService) *SearchHandler {
	return &SearchHandler{documentService: documentService}
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("query")
	log.Infof("[SearchHandler] search request, query: %s", query)

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	topK, err := strconv.Atoi(c.DefaultQuery("topK", "5"))
	if err != nil || topK <= 0 {
		topK = 5
	}
	mode := c.DefaultQuery("mode", "hybrid")

	results, err := h.documentService.Search(c.Request.Context(), query, topK, mode)
	if err != nil {
		log.Errorf("[SearchHandler] search failed, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	log.Infof("[SearchHandler] search done, query: '%s', %d results", query, len(results))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": results, "message": "success"})
}
