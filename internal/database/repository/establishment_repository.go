package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// EstablishmentRepository defines the interface for establishment data
// operations, including the per-user permission grants attached to them.
type EstablishmentRepository interface {
	Create(est *models.Establishment) error
	FindByID(id string) (*models.Establishment, error)
	FindByOrganization(orgID string) ([]models.Establishment, error)
	FindByIDs(ids []string) ([]models.Establishment, error)
	FindAll() ([]models.Establishment, error)
	Update(est *models.Establishment) error
	Delete(id string) error
	Count() (int64, error)
	CountByOrganization(orgID string) (int64, error)

	// UpsertPermission atomically inserts or updates the single permission
	// row for (UserID, EstablishmentID). Backed by the composite unique
	// index, so two concurrent writers can never create duplicate rows.
	UpsertPermission(perm *models.UserEstablishmentPermission) error
	FindPermission(userID, establishmentID string) (*models.UserEstablishmentPermission, error)
	FindPermissionsByUser(userID string) ([]models.UserEstablishmentPermission, error)
	DeletePermission(userID, establishmentID string) error
}

type establishmentRepository struct {
	db *gorm.DB
}

// NewEstablishmentRepository creates a new establishment repository instance
func NewEstablishmentRepository(db *gorm.DB) EstablishmentRepository {
	return &establishmentRepository{db: db}
}

func (r *establishmentRepository) Create(est *models.Establishment) error {
	return r.db.Create(est).Error
}

func (r *establishmentRepository) FindByID(id string) (*models.Establishment, error) {
	var est models.Establishment
	err := r.db.First(&est, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstablishmentNotFound
		}
		return nil, err
	}
	return &est, nil
}

func (r *establishmentRepository) FindByOrganization(orgID string) ([]models.Establishment, error) {
	var ests []models.Establishment
	err := r.db.Where("organization_id = ?", orgID).Order("name").Find(&ests).Error
	return ests, err
}

func (r *establishmentRepository) FindByIDs(ids []string) ([]models.Establishment, error) {
	if len(ids) == 0 {
		return []models.Establishment{}, nil
	}
	var ests []models.Establishment
	err := r.db.Where("id IN ?", ids).Order("name").Find(&ests).Error
	return ests, err
}

func (r *establishmentRepository) FindAll() ([]models.Establishment, error) {
	var ests []models.Establishment
	err := r.db.Order("created_at DESC").Find(&ests).Error
	return ests, err
}

func (r *establishmentRepository) Update(est *models.Establishment) error {
	return r.db.Save(est).Error
}

func (r *establishmentRepository) Delete(id string) error {
	return r.db.Delete(&models.Establishment{}, "id = ?", id).Error
}

func (r *establishmentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Establishment{}).Count(&count).Error
	return count, err
}

func (r *establishmentRepository) CountByOrganization(orgID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Establishment{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

func (r *establishmentRepository) UpsertPermission(perm *models.UserEstablishmentPermission) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "establishment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_view", "can_respond", "can_manage"}),
	}).Create(perm).Error
}

func (r *establishmentRepository) FindPermission(userID, establishmentID string) (*models.UserEstablishmentPermission, error) {
	var perm models.UserEstablishmentPermission
	err := r.db.Where("user_id = ? AND establishment_id = ?", userID, establishmentID).First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &perm, nil
}

func (r *establishmentRepository) FindPermissionsByUser(userID string) ([]models.UserEstablishmentPermission, error) {
	var perms []models.UserEstablishmentPermission
	err := r.db.Where("user_id = ?", userID).Find(&perms).Error
	return perms, err
}

func (r *establishmentRepository) DeletePermission(userID, establishmentID string) error {
	return r.db.Where("user_id = ? AND establishment_id = ?", userID, establishmentID).
		Delete(&models.UserEstablishmentPermission{}).Error
}

// Repository errors
var (
	ErrEstablishmentNotFound = errors.New("establishment not found")
	ErrPermissionNotFound    = errors.New("permission not found")
)
