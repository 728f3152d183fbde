package service

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

// GlobalStats aggregates platform-wide counters for the admin dashboard.
type GlobalStats struct {
	TotalOrganizations  int64   `json:"totalOrganizations"`
	TotalUsers          int64   `json:"totalUsers"`
	TotalEstablishments int64   `json:"totalEstablishments"`
	TotalReviews        int64   `json:"totalReviews"`
	PendingReviews      int64   `json:"pendingReviews"`
	UrgentReviews       int64   `json:"urgentReviews"`
	TotalResponses      int64   `json:"totalResponses"`
	ResponseRate        float64 `json:"responseRate"`
}

// OrganizationSummary is one organization row on the admin listing,
// enriched with counts and the billing record.
type OrganizationSummary struct {
	models.Organization
	UsersCount          int64           `json:"usersCount"`
	EstablishmentsCount int64           `json:"establishmentsCount"`
	Billing             *models.Billing `json:"billing,omitempty"`
}

// OrganizationDetail is the full admin view of one organization.
type OrganizationDetail struct {
	models.Organization
	Users          []models.User          `json:"users"`
	Establishments []models.Establishment `json:"establishments"`
	Billing        *models.Billing        `json:"billing,omitempty"`
}

// EstablishmentSummary is one establishment row on the admin listing with
// its owning organization's name resolved.
type EstablishmentSummary struct {
	models.Establishment
	OrganizationName string `json:"organizationName"`
}

// AdminOrganizationInput carries the writable fields of an organization on
// the admin surface.
type AdminOrganizationInput struct {
	Name                     string
	Logo                     *string
	DefaultAiTone            models.AiTone
	DefaultSignature         *string
	CustomPromptInstructions *string
	MaxUsers                 *int
	MaxEstablishments        *int
	IsActive                 *bool
}

// AdminUserInput carries the writable fields of a user on the admin surface.
// Unlike organization-scoped invitations, the admin may assign any role and
// any organization.
type AdminUserInput struct {
	Email          string
	Name           string
	Password       string
	Role           models.Role
	OrganizationID *string
	IsSuperAdmin   *bool
	IsActive       *bool
}

// BillingInput carries the writable fields of a billing record.
type BillingInput struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	Status               models.BillingStatus
	PlanName             string
	TrialEndsAt          *time.Time
	CurrentPeriodEnd     *time.Time
}

// AiTemplateInput carries the writable fields of an AI prompt template.
type AiTemplateInput struct {
	Name           string
	Description    *string
	PromptTemplate string
	Category       string
	IsActive       *bool
}

// AdminService is the cross-tenant surface. Callers are platform admins;
// the authorization check lives in the middleware, not here.
type AdminService interface {
	Stats() (*GlobalStats, error)

	ListOrganizations() ([]OrganizationSummary, error)
	GetOrganization(id string) (*OrganizationDetail, error)
	CreateOrganization(input AdminOrganizationInput) (*models.Organization, error)
	UpdateOrganization(id string, input AdminOrganizationInput) (*models.Organization, error)
	DeleteOrganization(id string) error

	ListEstablishments() ([]EstablishmentSummary, error)

	ListUsers() ([]models.User, error)
	CreateUser(input AdminUserInput) (*models.User, error)
	UpdateUser(id string, input AdminUserInput) (*models.User, error)
	DeleteUser(id string) error

	GetBilling(orgID string) (*models.Billing, error)
	UpdateBilling(orgID string, input BillingInput) (*models.Billing, error)

	ListTemplates() ([]models.AiTemplate, error)
	CreateTemplate(input AiTemplateInput) (*models.AiTemplate, error)
	UpdateTemplate(id string, input AiTemplateInput) (*models.AiTemplate, error)
	DeleteTemplate(id string) error

	RecentActivity(limit int) ([]models.ActivityLog, error)
}

type adminService struct {
	orgRepo      repository.OrganizationRepository
	userRepo     repository.UserRepository
	estRepo      repository.EstablishmentRepository
	reviewRepo   repository.ReviewRepository
	billingRepo  repository.BillingRepository
	templateRepo repository.AiTemplateRepository
	activity     ActivityService
	logger       *slog.Logger
}

// NewAdminService creates a new admin service instance
func NewAdminService(
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	estRepo repository.EstablishmentRepository,
	reviewRepo repository.ReviewRepository,
	billingRepo repository.BillingRepository,
	templateRepo repository.AiTemplateRepository,
	activity ActivityService,
	logger *slog.Logger,
) AdminService {
	return &adminService{
		orgRepo:      orgRepo,
		userRepo:     userRepo,
		estRepo:      estRepo,
		reviewRepo:   reviewRepo,
		billingRepo:  billingRepo,
		templateRepo: templateRepo,
		activity:     activity,
		logger:       logger,
	}
}

func (s *adminService) Stats() (*GlobalStats, error) {
	stats := &GlobalStats{}

	var err error
	if stats.TotalOrganizations, err = s.orgRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalEstablishments, err = s.estRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalReviews, err = s.reviewRepo.Count(); err != nil {
		return nil, err
	}
	if stats.PendingReviews, err = s.reviewRepo.CountPending(); err != nil {
		return nil, err
	}
	if stats.UrgentReviews, err = s.reviewRepo.CountUrgentPending(); err != nil {
		return nil, err
	}
	if stats.TotalResponses, err = s.reviewRepo.CountPostedResponses(); err != nil {
		return nil, err
	}

	// Zero reviews means a rate of 0, not a division error.
	if stats.TotalReviews > 0 {
		stats.ResponseRate = math.Round(float64(stats.TotalResponses) / float64(stats.TotalReviews) * 100)
	}

	return stats, nil
}

func (s *adminService) ListOrganizations() ([]OrganizationSummary, error) {
	orgs, err := s.orgRepo.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]OrganizationSummary, 0, len(orgs))
	for _, org := range orgs {
		summary := OrganizationSummary{Organization: org}

		if summary.UsersCount, err = s.userRepo.CountByOrganization(org.ID); err != nil {
			return nil, err
		}
		if summary.EstablishmentsCount, err = s.estRepo.CountByOrganization(org.ID); err != nil {
			return nil, err
		}
		if bill, err := s.billingRepo.FindByOrganization(org.ID); err == nil {
			summary.Billing = bill
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *adminService) GetOrganization(id string) (*OrganizationDetail, error) {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	detail := &OrganizationDetail{Organization: *org}

	if detail.Users, err = s.userRepo.FindByOrganization(id); err != nil {
		return nil, err
	}
	if detail.Establishments, err = s.estRepo.FindByOrganization(id); err != nil {
		return nil, err
	}
	if bill, err := s.billingRepo.FindByOrganization(id); err == nil {
		detail.Billing = bill
	}

	return detail, nil
}

func (s *adminService) CreateOrganization(input AdminOrganizationInput) (*models.Organization, error) {
	s.logger.Info("🏢 [AdminService] Creating organization", "name", input.Name)

	org := &models.Organization{
		Name:                     input.Name,
		Slug:                     GenerateSlug(input.Name),
		Logo:                     input.Logo,
		DefaultAiTone:            models.ToneProfessional,
		DefaultSignature:         input.DefaultSignature,
		CustomPromptInstructions: input.CustomPromptInstructions,
		MaxUsers:                 5,
		MaxEstablishments:        10,
		IsActive:                 true,
	}
	if input.DefaultAiTone != "" {
		org.DefaultAiTone = input.DefaultAiTone
	}
	if input.MaxUsers != nil {
		org.MaxUsers = *input.MaxUsers
	}
	if input.MaxEstablishments != nil {
		org.MaxEstablishments = *input.MaxEstablishments
	}

	if err := s.orgRepo.Create(org); err != nil {
		return nil, err
	}

	trialEndsAt := time.Now().AddDate(0, 0, models.TrialDays)
	bill := &models.Billing{
		OrganizationID: org.ID,
		Status:         models.BillingTrial,
		PlanName:       "trial",
		TrialEndsAt:    &trialEndsAt,
	}
	if err := s.billingRepo.Create(bill); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] Organization created", "organization_id", org.ID, "slug", org.Slug)
	return org, nil
}

func (s *adminService) UpdateOrganization(id string, input AdminOrganizationInput) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		org.Name = input.Name
	}
	if input.Logo != nil {
		org.Logo = input.Logo
	}
	if input.DefaultAiTone != "" {
		org.DefaultAiTone = input.DefaultAiTone
	}
	if input.DefaultSignature != nil {
		org.DefaultSignature = input.DefaultSignature
	}
	if input.CustomPromptInstructions != nil {
		org.CustomPromptInstructions = input.CustomPromptInstructions
	}
	if input.MaxUsers != nil {
		org.MaxUsers = *input.MaxUsers
	}
	if input.MaxEstablishments != nil {
		org.MaxEstablishments = *input.MaxEstablishments
	}
	if input.IsActive != nil {
		org.IsActive = *input.IsActive
	}

	if err := s.orgRepo.Update(org); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] Organization updated", "organization_id", org.ID)
	return org, nil
}

func (s *adminService) DeleteOrganization(id string) error {
	if _, err := s.orgRepo.FindByID(id); err != nil {
		return err
	}
	// Users, establishments, reviews and billing go with it via FK cascades.
	if err := s.orgRepo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("✅ [AdminService] Organization deleted", "organization_id", id)
	return nil
}

func (s *adminService) ListEstablishments() ([]EstablishmentSummary, error) {
	ests, err := s.estRepo.FindAll()
	if err != nil {
		return nil, err
	}

	// Resolve organization names once per org, not once per establishment.
	names := make(map[string]string)
	summaries := make([]EstablishmentSummary, 0, len(ests))
	for _, est := range ests {
		name, ok := names[est.OrganizationID]
		if !ok {
			org, err := s.orgRepo.FindByID(est.OrganizationID)
			if err == nil {
				name = org.Name
			}
			names[est.OrganizationID] = name
		}
		summaries = append(summaries, EstablishmentSummary{
			Establishment:    est,
			OrganizationName: name,
		})
	}

	return summaries, nil
}

func (s *adminService) ListUsers() ([]models.User, error) {
	return s.userRepo.FindAll()
}

func (s *adminService) CreateUser(input AdminUserInput) (*models.User, error) {
	s.logger.Info("👤 [AdminService] Creating user", "email", input.Email)

	if !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	if input.OrganizationID != nil {
		if _, err := s.orgRepo.FindByID(*input.OrganizationID); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          input.Email,
		PasswordHash:   string(hashed),
		Name:           input.Name,
		OrganizationID: input.OrganizationID,
		Role:           input.Role,
		IsActive:       true,
	}
	if input.IsSuperAdmin != nil {
		user.IsSuperAdmin = *input.IsSuperAdmin
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] User created", "user_id", user.ID)
	return user, nil
}

func (s *adminService) UpdateUser(id string, input AdminUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Role != "" {
		if !input.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		user.Role = input.Role
	}
	if input.OrganizationID != nil {
		if _, err := s.orgRepo.FindByID(*input.OrganizationID); err != nil {
			return nil, err
		}
		user.OrganizationID = input.OrganizationID
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}
	if input.IsSuperAdmin != nil {
		user.IsSuperAdmin = *input.IsSuperAdmin
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] User updated", "user_id", user.ID)
	return user, nil
}

func (s *adminService) DeleteUser(id string) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("✅ [AdminService] User deleted", "user_id", id)
	return nil
}

func (s *adminService) GetBilling(orgID string) (*models.Billing, error) {
	if _, err := s.orgRepo.FindByID(orgID); err != nil {
		return nil, err
	}
	return s.billingRepo.FindByOrganization(orgID)
}

func (s *adminService) UpdateBilling(orgID string, input BillingInput) (*models.Billing, error) {
	bill, err := s.GetBilling(orgID)
	if err != nil {
		return nil, err
	}

	if input.StripeCustomerID != nil {
		bill.StripeCustomerID = input.StripeCustomerID
	}
	if input.StripeSubscriptionID != nil {
		bill.StripeSubscriptionID = input.StripeSubscriptionID
	}
	if input.Status != "" {
		bill.Status = input.Status
	}
	if input.PlanName != "" {
		bill.PlanName = input.PlanName
	}
	if input.TrialEndsAt != nil {
		bill.TrialEndsAt = input.TrialEndsAt
	}
	if input.CurrentPeriodEnd != nil {
		bill.CurrentPeriodEnd = input.CurrentPeriodEnd
	}

	if err := s.billingRepo.Update(bill); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] Billing updated", "organization_id", orgID, "status", bill.Status)
	return bill, nil
}

func (s *adminService) ListTemplates() ([]models.AiTemplate, error) {
	return s.templateRepo.FindAll()
}

func (s *adminService) CreateTemplate(input AiTemplateInput) (*models.AiTemplate, error) {
	tpl := &models.AiTemplate{
		Name:           input.Name,
		Description:    input.Description,
		PromptTemplate: input.PromptTemplate,
		Category:       "general",
		IsActive:       true,
	}
	if input.Category != "" {
		tpl.Category = input.Category
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}

	if err := s.templateRepo.Create(tpl); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] Template created", "template_id", tpl.ID, "name", tpl.Name)
	return tpl, nil
}

func (s *adminService) UpdateTemplate(id string, input AiTemplateInput) (*models.AiTemplate, error) {
	tpl, err := s.templateRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		tpl.Name = input.Name
	}
	if input.Description != nil {
		tpl.Description = input.Description
	}
	if input.PromptTemplate != "" {
		tpl.PromptTemplate = input.PromptTemplate
	}
	if input.Category != "" {
		tpl.Category = input.Category
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}

	if err := s.templateRepo.Update(tpl); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AdminService] Template updated", "template_id", tpl.ID)
	return tpl, nil
}

func (s *adminService) DeleteTemplate(id string) error {
	if _, err := s.templateRepo.FindByID(id); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("✅ [AdminService] Template deleted", "template_id", id)
	return nil
}

func (s *adminService) RecentActivity(limit int) ([]models.ActivityLog, error) {
	return s.activity.Recent(limit)
}
