package service

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

// InviteUserInput carries the fields for inviting a user into an organization.
type InviteUserInput struct {
	Email            string
	Name             string
	Password         string
	Role             models.Role
	EstablishmentIDs []string
}

// UpdateUserInput carries the patchable fields of an organization user.
type UpdateUserInput struct {
	Name     *string
	Role     *models.Role
	IsActive *bool
}

// UserService manages users within the acting user's own organization.
// Cross-tenant user management lives on the admin surface.
type UserService interface {
	ListOrganizationUsers(actor *models.User) ([]models.User, error)
	InviteUser(actor *models.User, input InviteUserInput, ipAddress string) (*models.User, error)
	UpdateUser(actor *models.User, targetID string, input UpdateUserInput) (*models.User, error)
	DeleteUser(actor *models.User, targetID string) error
}

type userService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	estRepo  repository.EstablishmentRepository
	activity ActivityService
	logger   *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	estRepo repository.EstablishmentRepository,
	activity ActivityService,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		estRepo:  estRepo,
		activity: activity,
		logger:   logger,
	}
}

func (s *userService) ListOrganizationUsers(actor *models.User) ([]models.User, error) {
	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	if RoleRank(actor.Role) < RoleRank(models.RoleAdmin) {
		return nil, ErrAccessDenied
	}
	return s.userRepo.FindByOrganization(*actor.OrganizationID)
}

func (s *userService) InviteUser(actor *models.User, input InviteUserInput, ipAddress string) (*models.User, error) {
	s.logger.Info("✉️ [UserService] Inviting user", "email", input.Email, "actor", actor.ID)

	if actor.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	if RoleRank(actor.Role) < RoleRank(models.RoleAdmin) {
		return nil, ErrAccessDenied
	}
	// There is exactly one owner per organization; invitations cannot mint one.
	if input.Role == models.RoleOwner || !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	orgID := *actor.OrganizationID
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		return nil, err
	}

	// Grants may only target the inviter's own establishments.
	for _, estID := range input.EstablishmentIDs {
		est, err := s.estRepo.FindByID(estID)
		if err != nil {
			return nil, err
		}
		if est.OrganizationID != orgID {
			return nil, ErrAccessDenied
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
		OrganizationID: &orgID,
		Role:           input.Role,
		IsActive:       true,
	}

	err = s.orgRepo.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("organization_id = ?", orgID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(org.MaxUsers) {
			s.logger.Warn("⚠️ [UserService] User quota reached",
				"organization_id", orgID,
				"current", count,
				"limit", org.MaxUsers,
			)
			return ErrQuotaExceeded
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}

	for _, estID := range input.EstablishmentIDs {
		perm := &models.UserEstablishmentPermission{
			UserID:          user.ID,
			EstablishmentID: estID,
			CanView:         true,
		}
		if err := s.estRepo.UpsertPermission(perm); err != nil {
			s.logger.Error("❌ [UserService] Failed to grant permission", "error", err, "establishment_id", estID)
			return nil, err
		}
	}

	s.activity.Record(&orgID, &actor.ID, models.ActivityUserInvited,
		fmt.Sprintf("%s a invité %s (%s)", actor.Name, input.Name, input.Role),
		map[string]any{"invited_user_id": user.ID}, ipAddress)

	s.logger.Info("✅ [UserService] User invited", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) UpdateUser(actor *models.User, targetID string, input UpdateUserInput) (*models.User, error) {
	target, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return nil, err
	}

	if actor.OrganizationID == nil || !target.InOrganization(*actor.OrganizationID) {
		return nil, ErrAccessDenied
	}
	if RoleRank(actor.Role) < RoleRank(models.RoleAdmin) {
		return nil, ErrAccessDenied
	}
	// The owner cannot be demoted or deactivated by other admins.
	if target.Role == models.RoleOwner && actor.ID != target.ID {
		return nil, ErrOwnerProtected
	}

	if input.Name != nil && *input.Name != "" {
		target.Name = *input.Name
	}
	if input.Role != nil {
		if *input.Role == models.RoleOwner || !input.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		if target.Role == models.RoleOwner {
			return nil, ErrOwnerProtected
		}
		target.Role = *input.Role
	}
	if input.IsActive != nil {
		target.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(target); err != nil {
		return nil, err
	}

	s.logger.Info("✅ [UserService] User updated", "user_id", target.ID)
	return target, nil
}

func (s *userService) DeleteUser(actor *models.User, targetID string) error {
	target, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return err
	}

	if actor.OrganizationID == nil || !target.InOrganization(*actor.OrganizationID) {
		return ErrAccessDenied
	}
	if RoleRank(actor.Role) < RoleRank(models.RoleAdmin) {
		return ErrAccessDenied
	}
	if target.Role == models.RoleOwner {
		return ErrOwnerProtected
	}

	if err := s.userRepo.Delete(targetID); err != nil {
		return err
	}

	s.logger.Info("✅ [UserService] User deleted", "user_id", targetID)
	return nil
}

// Service errors
var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrOwnerProtected = errors.New("organization owner cannot be modified")
)
