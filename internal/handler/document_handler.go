package handler

import (
	"io"
	"net/http"

	"smart-tutor-go/internal/middleware"
	"smart-tutor-go/internal/service"
	"smart-tutor-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler manages the learning corpus endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

type ingestTextRequest struct {
	SourceName string `json:"source_name" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

// IngestText handles POST /api/v1/documents/text: synchronous ingestion of
// a plain-text document.
func (h *DocumentHandler) IngestText(c *gin.Context) {
	var req ingestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_name and text are required"})
		return
	}

	count, err := h.documentService.IngestText(c.Request.Context(), req.SourceName, req.Text)
	if err != nil {
		log.Errorf("[DocumentHandler] ingest failed for '%s': %v", req.SourceName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"data":    gin.H{"source_name": req.SourceName, "chunks_indexed": count},
		"message": "success",
	})
}

// Upload handles POST /api/v1/documents: stores the uploaded file and
// enqueues it for background ingestion.
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		log.Errorf("[DocumentHandler] failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		log.Errorf("[DocumentHandler] failed to read uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	userID := middleware.UserID(c)
	taskID, err := h.documentService.EnqueueDocument(c.Request.Context(), userID, fileHeader.Filename, body)
	if err != nil {
		log.Errorf("[DocumentHandler] enqueue failed for '%s': %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue document"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    202,
		"data":    gin.H{"source_name": fileHeader.Filename, "task_id": taskID},
		"message": "document accepted for ingestion",
	})
}

// Stats handles GET /api/v1/documents/stats.
func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.documentService.Stats(c.Request.Context())
	if err != nil {
		log.Errorf("[DocumentHandler] stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read collection stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": stats, "message": "success"})
}

// Reset handles DELETE /api/v1/documents: drops the indexed corpus.
func (h *DocumentHandler) Reset(c *gin.Context) {
	if err := h.documentService.Reset(c.Request.Context()); err != nil {
		log.Errorf("[DocumentHandler] reset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset the corpus"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "corpus reset"})
}
