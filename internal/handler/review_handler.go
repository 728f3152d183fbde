package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avisgenius/backend-go/internal/ai"
	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/database/service"
	"github.com/avisgenius/backend-go/internal/middleware"
)

// ReviewHandler handles HTTP requests for reviews and responses
type ReviewHandler struct {
	service service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger,
	}
}

type RespondRequest struct {
	FinalText string `json:"finalText" binding:"required,min=1"`
}

// List returns reviews across the user's accessible establishments.
// Optional query params: establishmentId, status.
func (h *ReviewHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var status *models.ReviewStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ReviewStatus(raw)
		if s != models.ReviewPending && s != models.ReviewResponded && s != models.ReviewIgnored {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		status = &s
	}

	reviews, err := h.service.ListReviews(user, c.Query("establishmentId"), status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Generate produces an AI draft response for a review
func (h *ReviewHandler) Generate(c *gin.Context) {
	user := middleware.CurrentUser(c)

	text, resp, err := h.service.GenerateDraft(c.Request.Context(), user, c.Param("id"), c.ClientIP())
	if err != nil {
		middleware.RecordAiGeneration("error")
		h.handleServiceError(c, err)
		return
	}
	middleware.RecordAiGeneration("success")

	c.JSON(http.StatusOK, gin.H{"text": text, "response": resp})
}

// Respond posts the final response text and marks the review responded
func (h *ReviewHandler) Respond(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid respond request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "finalText is required"})
		return
	}

	resp, err := h.service.Respond(c.Request.Context(), user, c.Param("id"), req.FinalText, c.ClientIP())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": resp})
}

// handleServiceError maps service errors to HTTP responses
func (h *ReviewHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrEmptyFinalText):
		c.JSON(http.StatusBadRequest, gin.H{"error": "finalText is required"})
	case errors.Is(err, repository.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	case errors.Is(err, repository.ErrEstablishmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Establishment not found"})
	case errors.Is(err, ai.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI generation failed. Try again."})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
