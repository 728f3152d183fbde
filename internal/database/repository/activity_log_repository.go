package repository

import (
	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// ActivityLogRepository defines the interface for the append-only audit log.
// Entries are never updated or deleted.
type ActivityLogRepository interface {
	Create(log *models.ActivityLog) error
	FindRecent(limit int) ([]models.ActivityLog, error)
	FindByOrganization(orgID string, limit int) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository instance
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(log *models.ActivityLog) error {
	return r.db.Create(log).Error
}

func (r *activityLogRepository) FindRecent(limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.ActivityLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *activityLogRepository) FindByOrganization(orgID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.ActivityLog
	err := r.db.Where("organization_id = ?", orgID).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
