package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/database/service"
)

// AdminHandler handles HTTP requests on the cross-tenant admin surface.
// Authorization happens in the middleware chain; every handler here may
// assume a platform admin.
type AdminHandler struct {
	service service.AdminService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// Request DTOs
type AdminOrganizationRequest struct {
	Name                     string        `json:"name" binding:"required,min=1,max=200"`
	Logo                     *string       `json:"logo"`
	DefaultAiTone            models.AiTone `json:"defaultAiTone"`
	DefaultSignature         *string       `json:"defaultSignature"`
	CustomPromptInstructions *string       `json:"customPromptInstructions"`
	MaxUsers                 *int          `json:"maxUsers"`
	MaxEstablishments        *int          `json:"maxEstablishments"`
	IsActive                 *bool         `json:"isActive"`
}

type AdminOrganizationUpdateRequest struct {
	Name                     string        `json:"name"`
	Logo                     *string       `json:"logo"`
	DefaultAiTone            models.AiTone `json:"defaultAiTone"`
	DefaultSignature         *string       `json:"defaultSignature"`
	CustomPromptInstructions *string       `json:"customPromptInstructions"`
	MaxUsers                 *int          `json:"maxUsers"`
	MaxEstablishments        *int          `json:"maxEstablishments"`
	IsActive                 *bool         `json:"isActive"`
}

type AdminUserRequest struct {
	Email          string      `json:"email" binding:"required,email"`
	Name           string      `json:"name" binding:"required,min=1,max=100"`
	Password       string      `json:"password" binding:"required,min=8"`
	Role           models.Role `json:"role" binding:"required"`
	OrganizationID *string     `json:"organizationId"`
	IsSuperAdmin   *bool       `json:"isSuperAdmin"`
}

type AdminUserUpdateRequest struct {
	Name           string      `json:"name"`
	Password       string      `json:"password"`
	Role           models.Role `json:"role"`
	OrganizationID *string     `json:"organizationId"`
	IsSuperAdmin   *bool       `json:"isSuperAdmin"`
	IsActive       *bool       `json:"isActive"`
}

type BillingUpdateRequest struct {
	StripeCustomerID     *string              `json:"stripeCustomerId"`
	StripeSubscriptionID *string              `json:"stripeSubscriptionId"`
	Status               models.BillingStatus `json:"status"`
	PlanName             string               `json:"planName"`
	TrialEndsAt          *time.Time           `json:"trialEndsAt"`
	CurrentPeriodEnd     *time.Time           `json:"currentPeriodEnd"`
}

type AiTemplateRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=200"`
	Description    *string `json:"description"`
	PromptTemplate string  `json:"promptTemplate" binding:"required"`
	Category       string  `json:"category"`
	IsActive       *bool   `json:"isActive"`
}

type AiTemplateUpdateRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	PromptTemplate string  `json:"promptTemplate"`
	Category       string  `json:"category"`
	IsActive       *bool   `json:"isActive"`
}

// Stats returns platform-wide aggregates
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListOrganizations returns all organizations with counts and billing
func (h *AdminHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.service.ListOrganizations()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrganization returns one organization with users, establishments and billing
func (h *AdminHandler) GetOrganization(c *gin.Context) {
	detail, err := h.service.GetOrganization(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": detail})
}

// CreateOrganization creates an organization with a trial billing record
func (h *AdminHandler) CreateOrganization(c *gin.Context) {
	var req AdminOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid organization request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Name is required."})
		return
	}

	org, err := h.service.CreateOrganization(service.AdminOrganizationInput{
		Name:                     req.Name,
		Logo:                     req.Logo,
		DefaultAiTone:            req.DefaultAiTone,
		DefaultSignature:         req.DefaultSignature,
		CustomPromptInstructions: req.CustomPromptInstructions,
		MaxUsers:                 req.MaxUsers,
		MaxEstablishments:        req.MaxEstablishments,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

// UpdateOrganization modifies an organization
func (h *AdminHandler) UpdateOrganization(c *gin.Context) {
	var req AdminOrganizationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid organization update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	org, err := h.service.UpdateOrganization(c.Param("id"), service.AdminOrganizationInput{
		Name:                     req.Name,
		Logo:                     req.Logo,
		DefaultAiTone:            req.DefaultAiTone,
		DefaultSignature:         req.DefaultSignature,
		CustomPromptInstructions: req.CustomPromptInstructions,
		MaxUsers:                 req.MaxUsers,
		MaxEstablishments:        req.MaxEstablishments,
		IsActive:                 req.IsActive,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

// DeleteOrganization removes an organization and its dependents
func (h *AdminHandler) DeleteOrganization(c *gin.Context) {
	if err := h.service.DeleteOrganization(c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// ListEstablishments returns all establishments across tenants
func (h *AdminHandler) ListEstablishments(c *gin.Context) {
	ests, err := h.service.ListEstablishments()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"establishments": ests})
}

// ListUsers returns all users across tenants
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser creates a user in any organization
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req AdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid user request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Email, name, password (min 8 chars), and role required."})
		return
	}

	user, err := h.service.CreateUser(service.AdminUserInput{
		Email:          req.Email,
		Name:           req.Name,
		Password:       req.Password,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		IsSuperAdmin:   req.IsSuperAdmin,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// UpdateUser modifies any user
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid user update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.service.UpdateUser(c.Param("id"), service.AdminUserInput{
		Name:           req.Name,
		Password:       req.Password,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		IsSuperAdmin:   req.IsSuperAdmin,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes any user
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// GetBilling returns the billing record of one organization
func (h *AdminHandler) GetBilling(c *gin.Context) {
	bill, err := h.service.GetBilling(c.Param("orgId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"billing": bill})
}

// UpdateBilling modifies the billing record of one organization
func (h *AdminHandler) UpdateBilling(c *gin.Context) {
	var req BillingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid billing update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	bill, err := h.service.UpdateBilling(c.Param("orgId"), service.BillingInput{
		StripeCustomerID:     req.StripeCustomerID,
		StripeSubscriptionID: req.StripeSubscriptionID,
		Status:               req.Status,
		PlanName:             req.PlanName,
		TrialEndsAt:          req.TrialEndsAt,
		CurrentPeriodEnd:     req.CurrentPeriodEnd,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"billing": bill})
}

// ListTemplates returns all AI prompt templates
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	tpls, err := h.service.ListTemplates()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": tpls})
}

// CreateTemplate creates an AI prompt template
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req AiTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid template request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Name and promptTemplate are required."})
		return
	}

	tpl, err := h.service.CreateTemplate(service.AiTemplateInput{
		Name:           req.Name,
		Description:    req.Description,
		PromptTemplate: req.PromptTemplate,
		Category:       req.Category,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

// UpdateTemplate modifies an AI prompt template
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	var req AiTemplateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid template update", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tpl, err := h.service.UpdateTemplate(c.Param("id"), service.AiTemplateInput{
		Name:           req.Name,
		Description:    req.Description,
		PromptTemplate: req.PromptTemplate,
		Category:       req.Category,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

// DeleteTemplate removes an AI prompt template
func (h *AdminHandler) DeleteTemplate(c *gin.Context) {
	if err := h.service.DeleteTemplate(c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// ActivityLogs returns the most recent activity log entries
func (h *AdminHandler) ActivityLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	logs, err := h.service.RecentActivity(limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// handleServiceError maps service errors to HTTP responses
func (h *AdminHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
	case errors.Is(err, service.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, repository.ErrOrganizationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrBillingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Billing not found"})
	case errors.Is(err, repository.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
