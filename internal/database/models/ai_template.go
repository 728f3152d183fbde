package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AiTemplate is a global prompt template managed by platform admins.
// Not tenant-scoped.
type AiTemplate struct {
	ID             string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    *string   `json:"description,omitempty"`
	PromptTemplate string    `gorm:"not null" json:"prompt_template"`
	Category       string    `gorm:"not null;default:general" json:"category"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (AiTemplate) TableName() string {
	return "ai_templates"
}

func (t *AiTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
