package service

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

// EstablishmentInput carries the writable fields of an establishment.
type EstablishmentInput struct {
	Name              string
	Address           *string
	Phone             *string
	AiTone            models.AiTone
	SignatureTemplate *string
	GooglePlaceID     *string
	GoogleAccountID   *string
	GoogleLocationID  *string
}

// PermissionInput carries a per-establishment grant for one user.
type PermissionInput struct {
	UserID     string
	CanView    bool
	CanRespond bool
	CanManage  bool
}

// EstablishmentService defines the interface for establishment business logic
type EstablishmentService interface {
	// List returns the establishments the user may view: all of the
	// organization's for owner/admin, the granted subset for manager/viewer.
	List(user *models.User) ([]models.Establishment, error)
	Get(user *models.User, id string) (*models.Establishment, error)
	Create(user *models.User, input EstablishmentInput, ipAddress string) (*models.Establishment, error)
	Update(user *models.User, id string, input EstablishmentInput) (*models.Establishment, error)
	Delete(user *models.User, id string) error
	// SetPermission upserts the grant row for (input.UserID, establishmentID).
	SetPermission(actor *models.User, establishmentID string, input PermissionInput) (*models.UserEstablishmentPermission, error)
}

type establishmentService struct {
	estRepo  repository.EstablishmentRepository
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
	policy   *AccessPolicy
	activity ActivityService
	logger   *slog.Logger
}

// NewEstablishmentService creates a new establishment service instance
func NewEstablishmentService(
	estRepo repository.EstablishmentRepository,
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	policy *AccessPolicy,
	activity ActivityService,
	logger *slog.Logger,
) EstablishmentService {
	return &establishmentService{
		estRepo:  estRepo,
		orgRepo:  orgRepo,
		userRepo: userRepo,
		policy:   policy,
		activity: activity,
		logger:   logger,
	}
}

func (s *establishmentService) List(user *models.User) ([]models.Establishment, error) {
	ids, err := s.policy.AccessibleEstablishmentIDs(user)
	if err != nil {
		return nil, err
	}
	return s.estRepo.FindByIDs(ids)
}

func (s *establishmentService) Get(user *models.User, id string) (*models.Establishment, error) {
	// Resource first, permission second: missing resources are 404 for
	// everyone, denied resources are a uniform 403.
	est, err := s.estRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanViewEstablishment(user, est); err != nil {
		return nil, err
	}
	return est, nil
}

func (s *establishmentService) Create(user *models.User, input EstablishmentInput, ipAddress string) (*models.Establishment, error) {
	s.logger.Info("🏪 [EstablishmentService] Creating establishment", "name", input.Name, "user_id", user.ID)

	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	if !capsFor(user.Role).ManageEstablishments {
		return nil, ErrAccessDenied
	}

	orgID := *user.OrganizationID
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		return nil, err
	}

	est := &models.Establishment{
		OrganizationID:    orgID,
		Name:              input.Name,
		Address:           input.Address,
		Phone:             input.Phone,
		AiTone:            input.AiTone,
		SignatureTemplate: input.SignatureTemplate,
		GooglePlaceID:     input.GooglePlaceID,
		GoogleAccountID:   input.GoogleAccountID,
		GoogleLocationID:  input.GoogleLocationID,
		IsActive:          true,
	}
	if est.AiTone == "" {
		est.AiTone = org.DefaultAiTone
	}

	// Count-then-insert inside one transaction so concurrent creates cannot
	// overshoot the organization's ceiling.
	err = s.orgRepo.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Establishment{}).Where("organization_id = ?", orgID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(org.MaxEstablishments) {
			s.logger.Warn("⚠️ [EstablishmentService] Establishment quota reached",
				"organization_id", orgID,
				"current", count,
				"limit", org.MaxEstablishments,
			)
			return ErrQuotaExceeded
		}
		return tx.Create(est).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(&orgID, &user.ID, models.ActivityEstablishmentAdded,
		fmt.Sprintf("Établissement %q ajouté", est.Name), map[string]any{"establishment_id": est.ID}, ipAddress)

	s.logger.Info("✅ [EstablishmentService] Establishment created", "establishment_id", est.ID)
	return est, nil
}

func (s *establishmentService) Update(user *models.User, id string, input EstablishmentInput) (*models.Establishment, error) {
	est, err := s.estRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanManageEstablishment(user, est); err != nil {
		return nil, err
	}

	if input.Name != "" {
		est.Name = input.Name
	}
	if input.Address != nil {
		est.Address = input.Address
	}
	if input.Phone != nil {
		est.Phone = input.Phone
	}
	if input.AiTone != "" {
		est.AiTone = input.AiTone
	}
	if input.SignatureTemplate != nil {
		est.SignatureTemplate = input.SignatureTemplate
	}
	if input.GooglePlaceID != nil {
		est.GooglePlaceID = input.GooglePlaceID
	}
	if input.GoogleAccountID != nil {
		est.GoogleAccountID = input.GoogleAccountID
	}
	if input.GoogleLocationID != nil {
		est.GoogleLocationID = input.GoogleLocationID
	}

	if err := s.estRepo.Update(est); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [EstablishmentService] Establishment updated", "establishment_id", est.ID)
	return est, nil
}

func (s *establishmentService) Delete(user *models.User, id string) error {
	est, err := s.estRepo.FindByID(id)
	if err != nil {
		return err
	}
	// Deletion is owner/admin only; a canManage grant is not enough.
	if !user.InOrganization(est.OrganizationID) || !capsFor(user.Role).ManageEstablishments {
		return ErrAccessDenied
	}

	if err := s.estRepo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("✅ [EstablishmentService] Establishment deleted", "establishment_id", id)
	return nil
}

func (s *establishmentService) SetPermission(actor *models.User, establishmentID string, input PermissionInput) (*models.UserEstablishmentPermission, error) {
	est, err := s.estRepo.FindByID(establishmentID)
	if err != nil {
		return nil, err
	}
	if !actor.InOrganization(est.OrganizationID) || !capsFor(actor.Role).ManageEstablishments {
		return nil, ErrAccessDenied
	}

	target, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if !target.InOrganization(est.OrganizationID) {
		return nil, ErrAccessDenied
	}

	perm := &models.UserEstablishmentPermission{
		UserID:          target.ID,
		EstablishmentID: est.ID,
		CanView:         input.CanView,
		CanRespond:      input.CanRespond,
		CanManage:       input.CanManage,
	}
	if err := s.estRepo.UpsertPermission(perm); err != nil {
		return nil, err
	}

	saved, err := s.estRepo.FindPermission(target.ID, est.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("✅ [EstablishmentService] Permission set",
		"establishment_id", est.ID,
		"user_id", target.ID,
		"can_view", saved.CanView,
		"can_respond", saved.CanRespond,
		"can_manage", saved.CanManage,
	)
	return saved, nil
}

// Service errors
var (
	ErrQuotaExceeded  = errors.New("plan quota exceeded")
	ErrNoOrganization = errors.New("user has no organization")
)
