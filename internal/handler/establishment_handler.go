package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/database/service"
	"github.com/avisgenius/backend-go/internal/middleware"
)

// EstablishmentHandler handles HTTP requests for establishments
type EstablishmentHandler struct {
	service       service.EstablishmentService
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewEstablishmentHandler creates a new establishment handler
func NewEstablishmentHandler(service service.EstablishmentService, reviewService service.ReviewService, logger *slog.Logger) *EstablishmentHandler {
	return &EstablishmentHandler{
		service:       service,
		reviewService: reviewService,
		logger:        logger,
	}
}

// Request DTOs
type EstablishmentRequest struct {
	Name              string        `json:"name" binding:"required,min=1,max=200"`
	Address           *string       `json:"address"`
	Phone             *string       `json:"phone"`
	AiTone            models.AiTone `json:"aiTone"`
	SignatureTemplate *string       `json:"signatureTemplate"`
	GooglePlaceID     *string       `json:"googlePlaceId"`
	GoogleAccountID   *string       `json:"googleAccountId"`
	GoogleLocationID  *string       `json:"googleLocationId"`
}

type EstablishmentUpdateRequest struct {
	Name              string        `json:"name"`
	Address           *string       `json:"address"`
	Phone             *string       `json:"phone"`
	AiTone            models.AiTone `json:"aiTone"`
	SignatureTemplate *string       `json:"signatureTemplate"`
	GooglePlaceID     *string       `json:"googlePlaceId"`
	GoogleAccountID   *string       `json:"googleAccountId"`
	GoogleLocationID  *string       `json:"googleLocationId"`
}

type PermissionRequest struct {
	UserID     string `json:"userId" binding:"required"`
	CanView    bool   `json:"canView"`
	CanRespond bool   `json:"canRespond"`
	CanManage  bool   `json:"canManage"`
}

type ImportReviewRequest struct {
	GoogleReviewID *string   `json:"googleReviewId"`
	AuthorName     string    `json:"authorName" binding:"required"`
	AuthorPhotoURL *string   `json:"authorPhotoUrl"`
	Rating         int       `json:"rating" binding:"required"`
	Content        *string   `json:"content"`
	PublishedAt    time.Time `json:"publishedAt" binding:"required"`
}

type ImportReviewsRequest struct {
	Reviews []ImportReviewRequest `json:"reviews" binding:"required,min=1,dive"`
}

// List returns the establishments the user may view
func (h *EstablishmentHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	ests, err := h.service.List(user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"establishments": ests})
}

// Get returns one establishment
func (h *EstablishmentHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)

	est, err := h.service.Get(user, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"establishment": est})
}

// Create creates an establishment in the user's organization
func (h *EstablishmentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req EstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid establishment request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Name is required."})
		return
	}

	est, err := h.service.Create(user, service.EstablishmentInput{
		Name:              req.Name,
		Address:           req.Address,
		Phone:             req.Phone,
		AiTone:            req.AiTone,
		SignatureTemplate: req.SignatureTemplate,
		GooglePlaceID:     req.GooglePlaceID,
		GoogleAccountID:   req.GoogleAccountID,
		GoogleLocationID:  req.GoogleLocationID,
	}, c.ClientIP())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"establishment": est})
}

// Update modifies an establishment
func (h *EstablishmentHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req EstablishmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid establishment update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	est, err := h.service.Update(user, c.Param("id"), service.EstablishmentInput{
		Name:              req.Name,
		Address:           req.Address,
		Phone:             req.Phone,
		AiTone:            req.AiTone,
		SignatureTemplate: req.SignatureTemplate,
		GooglePlaceID:     req.GooglePlaceID,
		GoogleAccountID:   req.GoogleAccountID,
		GoogleLocationID:  req.GoogleLocationID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"establishment": est})
}

// Delete removes an establishment
func (h *EstablishmentHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.service.Delete(user, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Establishment deleted"})
}

// SetPermission upserts a user's grant on an establishment
func (h *EstablishmentHandler) SetPermission(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid permission request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. userId is required."})
		return
	}

	perm, err := h.service.SetPermission(user, c.Param("id"), service.PermissionInput{
		UserID:     req.UserID,
		CanView:    req.CanView,
		CanRespond: req.CanRespond,
		CanManage:  req.CanManage,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"permission": perm})
}

// ImportReviews ingests a batch of reviews from the review source
func (h *EstablishmentHandler) ImportReviews(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req ImportReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid import request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. A non-empty reviews array is required."})
		return
	}

	inputs := make([]service.ReviewInput, 0, len(req.Reviews))
	for _, r := range req.Reviews {
		inputs = append(inputs, service.ReviewInput{
			GoogleReviewID: r.GoogleReviewID,
			AuthorName:     r.AuthorName,
			AuthorPhotoURL: r.AuthorPhotoURL,
			Rating:         r.Rating,
			Content:        r.Content,
			PublishedAt:    r.PublishedAt,
		})
	}

	reviews, err := h.reviewService.IngestReviews(user, c.Param("id"), inputs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reviews": reviews, "imported": len(reviews)})
}

// handleServiceError maps service errors to HTTP responses
func (h *EstablishmentHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrNoOrganization):
		c.JSON(http.StatusForbidden, gin.H{"error": "User has no organization"})
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": "Plan quota exceeded"})
	case errors.Is(err, service.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
	case errors.Is(err, repository.ErrEstablishmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Establishment not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
