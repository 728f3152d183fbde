package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityType enumerates the actions recorded in the audit log.
type ActivityType string

const (
	ActivityLogin              ActivityType = "login"
	ActivityReviewResponded    ActivityType = "review_responded"
	ActivityAiGenerated        ActivityType = "ai_generated"
	ActivitySettingsChanged    ActivityType = "settings_changed"
	ActivityEstablishmentAdded ActivityType = "establishment_added"
	ActivityUserInvited        ActivityType = "user_invited"
)

// ActivityLog is an append-only audit entry. Entries record the writer's
// intent at the time of the action and are never updated or deleted.
type ActivityLog struct {
	ID             string          `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID *string         `gorm:"type:varchar(36);index" json:"organization_id,omitempty"`
	UserID         *string         `gorm:"type:varchar(36)" json:"user_id,omitempty"`
	ActivityType   ActivityType    `gorm:"not null" json:"activity_type"`
	Description    string          `gorm:"not null" json:"description"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress      *string         `json:"ip_address,omitempty"`
	UserAgent      *string         `json:"user_agent,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName overrides the table name
func (ActivityLog) TableName() string {
	return "activity_logs"
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
