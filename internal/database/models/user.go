package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the organization-scoped role of a user.
// Ascending privilege: viewer < manager < admin = owner.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

// User represents an identity within exactly one organization.
// IsSuperAdmin is a platform-wide flag, orthogonal to the org role.
type User struct {
	ID             string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	Name           string     `gorm:"not null" json:"name"`
	Avatar         *string    `json:"avatar,omitempty"`
	OrganizationID *string    `gorm:"type:varchar(36);index" json:"organization_id,omitempty"`
	Role           Role       `gorm:"not null;default:viewer" json:"role"`
	IsSuperAdmin   bool       `gorm:"not null;default:false" json:"is_super_admin"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	// Relationships
	Permissions []UserEstablishmentPermission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// InOrganization reports whether the user belongs to the given organization.
func (u *User) InOrganization(orgID string) bool {
	return u.OrganizationID != nil && *u.OrganizationID == orgID
}
