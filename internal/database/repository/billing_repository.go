package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// BillingRepository defines the interface for billing data operations
type BillingRepository interface {
	Create(billing *models.Billing) error
	FindByOrganization(orgID string) (*models.Billing, error)
	Update(billing *models.Billing) error
}

type billingRepository struct {
	db *gorm.DB
}

// NewBillingRepository creates a new billing repository instance
func NewBillingRepository(db *gorm.DB) BillingRepository {
	return &billingRepository{db: db}
}

func (r *billingRepository) Create(billing *models.Billing) error {
	return r.db.Create(billing).Error
}

func (r *billingRepository) FindByOrganization(orgID string) (*models.Billing, error) {
	var billing models.Billing
	err := r.db.Where("organization_id = ?", orgID).First(&billing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingNotFound
		}
		return nil, err
	}
	return &billing, nil
}

func (r *billingRepository) Update(billing *models.Billing) error {
	return r.db.Save(billing).Error
}

// Repository errors
var (
	ErrBillingNotFound = errors.New("billing not found")
)
