package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Establishment is a physical business location owned by one organization.
type Establishment struct {
	ID                string    `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID    string    `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	GooglePlaceID     *string   `json:"google_place_id,omitempty"`
	GoogleAccountID   *string   `json:"google_account_id,omitempty"`
	GoogleLocationID  *string   `json:"google_location_id,omitempty"`
	Name              string    `gorm:"not null" json:"name"`
	Address           *string   `json:"address,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	AiTone            AiTone    `gorm:"not null;default:professional" json:"ai_tone"`
	SignatureTemplate *string   `json:"signature_template,omitempty"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`

	// Relationships
	Reviews     []Review                      `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	Permissions []UserEstablishmentPermission `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// TableName overrides the table name
func (Establishment) TableName() string {
	return "establishments"
}

func (e *Establishment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// UserEstablishmentPermission is a fine-grained grant for manager/viewer roles.
// At most one row exists per (user, establishment) pair; writes upsert.
// Owner/admin bypass these rows entirely via role-based access.
type UserEstablishmentPermission struct {
	ID              string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_establishment" json:"user_id"`
	EstablishmentID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_establishment" json:"establishment_id"`
	CanView         bool      `gorm:"not null;default:true" json:"can_view"`
	CanRespond      bool      `gorm:"not null;default:false" json:"can_respond"`
	CanManage       bool      `gorm:"not null;default:false" json:"can_manage"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName overrides the table name
func (UserEstablishmentPermission) TableName() string {
	return "user_establishment_permissions"
}

func (p *UserEstablishmentPermission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
