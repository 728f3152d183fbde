package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// OrganizationRepository defines the interface for organization data operations
type OrganizationRepository interface {
	Create(org *models.Organization) error
	FindByID(id string) (*models.Organization, error)
	FindBySlug(slug string) (*models.Organization, error)
	FindAll() ([]models.Organization, error)
	Update(org *models.Organization) error
	Delete(id string) error
	Count() (int64, error)

	// Transaction runs fn inside a database transaction with a repository
	// bound to it. Used for count-then-insert quota enforcement.
	Transaction(fn func(tx *gorm.DB) error) error
}

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository instance
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

func (r *organizationRepository) FindByID(id string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) FindBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.Where("slug = ?", slug).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) FindAll() ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.Order("created_at DESC").Find(&orgs).Error
	return orgs, err
}

func (r *organizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

func (r *organizationRepository) Delete(id string) error {
	return r.db.Delete(&models.Organization{}, "id = ?", id).Error
}

func (r *organizationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Organization{}).Count(&count).Error
	return count, err
}

func (r *organizationRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Repository errors
var (
	ErrOrganizationNotFound = errors.New("organization not found")
)
