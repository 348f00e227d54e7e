package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"
	"spam-detector/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Classifier scores a single text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.ClassificationResult, error)
}

// Handler handles HTTP requests
type Handler struct {
	classifier Classifier
	runs       repository.IngestRunRepository
	logger     *zap.Logger
}

// NewHandler creates a new API handler. runs may be nil, in which case the
// dataset routes are not registered.
func NewHandler(classifier Classifier, runs repository.IngestRunRepository, logger *zap.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		runs:       runs,
		logger:     logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/classify", h.Classify)
		api.GET("/ping", h.Ping)

		if h.runs != nil {
			api.GET("/dataset/runs", h.ListRuns)
			api.GET("/dataset/runs/:id", h.GetRun)
		}
	}
}

// Classify scores one email body.
// POST /api/classify
func (h *Handler) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Debug("Received text", zap.Int("length", len(*req.Text)))

	result, err := h.classifier.Classify(c.Request.Context(), *req.Text)
	if err != nil {
		h.logger.Error("Failed to classify", zap.Error(err), zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Ping reports liveness. It never touches the classifier.
// GET /api/ping
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListRuns returns recent preprocessing runs.
// GET /api/dataset/runs?limit=N
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit (must be 1-1000)"})
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list ingest runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

// GetRun returns one preprocessing run.
// GET /api/dataset/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get ingest run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}

	c.JSON(http.StatusOK, run)
}
