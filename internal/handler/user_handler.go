package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/database/service"
	"github.com/avisgenius/backend-go/internal/middleware"
)

// UserHandler handles HTTP requests for organization user management
type UserHandler struct {
	service service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

type InviteUserRequest struct {
	Email            string      `json:"email" binding:"required,email"`
	Name             string      `json:"name" binding:"required,min=1,max=100"`
	Password         string      `json:"password" binding:"required,min=8"`
	Role             models.Role `json:"role" binding:"required"`
	EstablishmentIDs []string    `json:"establishmentIds"`
}

type UpdateUserRequest struct {
	Name     *string      `json:"name"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

// List returns the users of the actor's organization
func (h *UserHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	users, err := h.service.ListOrganizationUsers(user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Invite creates a user in the actor's organization
func (h *UserHandler) Invite(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid invite request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Email, name, password (min 8 chars), and role required."})
		return
	}

	invited, err := h.service.InviteUser(user, service.InviteUserInput{
		Email:            req.Email,
		Name:             req.Name,
		Password:         req.Password,
		Role:             req.Role,
		EstablishmentIDs: req.EstablishmentIDs,
	}, c.ClientIP())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": invited})
}

// Update modifies a user in the actor's organization
func (h *UserHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid user update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.service.UpdateUser(user, c.Param("id"), service.UpdateUserInput{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// Delete removes a user from the actor's organization
func (h *UserHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.service.DeleteUser(user, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// handleServiceError maps service errors to HTTP responses
func (h *UserHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrNoOrganization):
		c.JSON(http.StatusForbidden, gin.H{"error": "User has no organization"})
	case errors.Is(err, service.ErrOwnerProtected):
		c.JSON(http.StatusForbidden, gin.H{"error": "Organization owner cannot be modified"})
	case errors.Is(err, service.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": "Plan quota exceeded"})
	case errors.Is(err, service.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrEstablishmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Establishment not found"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
