package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/worker"
)

// ActivityService appends entries to the audit log. Writes record the
// caller's intent at that moment and are never validated against current
// state. Appends run on the worker pool so request latency is unaffected;
// the pool is drained on shutdown.
type ActivityService interface {
	Record(orgID, userID *string, activityType models.ActivityType, description string, metadata map[string]any, ipAddress string)
	Recent(limit int) ([]models.ActivityLog, error)
	RecentByOrganization(orgID string, limit int) ([]models.ActivityLog, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	pool   *worker.Pool
	logger *slog.Logger
}

// NewActivityService creates a new activity service instance
func NewActivityService(repo repository.ActivityLogRepository, pool *worker.Pool, logger *slog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		pool:   pool,
		logger: logger,
	}
}

func (s *activityService) Record(orgID, userID *string, activityType models.ActivityType, description string, metadata map[string]any, ipAddress string) {
	entry := &models.ActivityLog{
		OrganizationID: orgID,
		UserID:         userID,
		ActivityType:   activityType,
		Description:    description,
	}

	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			s.logger.Warn("⚠️ [ActivityService] Failed to marshal metadata", "error", err, "type", activityType)
		} else {
			entry.Metadata = raw
		}
	}

	s.pool.Submit(func(ctx context.Context) {
		if err := s.repo.Create(entry); err != nil {
			s.logger.Error("❌ [ActivityService] Failed to append activity log", "error", err, "type", activityType)
		}
	})
}

func (s *activityService) Recent(limit int) ([]models.ActivityLog, error) {
	return s.repo.FindRecent(limit)
}

func (s *activityService) RecentByOrganization(orgID string, limit int) ([]models.ActivityLog, error) {
	return s.repo.FindByOrganization(orgID, limit)
}
