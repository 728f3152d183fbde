package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AiTone controls the voice of AI-generated review responses
type AiTone string

const (
	ToneFormal       AiTone = "formal"
	ToneFriendly     AiTone = "friendly"
	ToneProfessional AiTone = "professional"
)

// BillingStatus represents the billing lifecycle of an organization
type BillingStatus string

const (
	BillingTrial     BillingStatus = "trial"
	BillingActive    BillingStatus = "active"
	BillingPastDue   BillingStatus = "past_due"
	BillingCancelled BillingStatus = "cancelled"
)

// Organization represents a tenant in the multi-tenant SaaS architecture.
// Every user and establishment belongs to exactly one organization.
type Organization struct {
	ID                       string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name                     string    `gorm:"not null" json:"name"`
	Slug                     string    `gorm:"uniqueIndex;not null" json:"slug"`
	Logo                     *string   `json:"logo,omitempty"`
	DefaultAiTone            AiTone    `gorm:"not null;default:professional" json:"default_ai_tone"`
	DefaultSignature         *string   `json:"default_signature,omitempty"`
	CustomPromptInstructions *string   `json:"custom_prompt_instructions,omitempty"`
	MaxUsers                 int       `gorm:"not null;default:5" json:"max_users"`
	MaxEstablishments        int       `gorm:"not null;default:10" json:"max_establishments"`
	IsActive                 bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`

	// Relationships
	Users          []User          `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"users,omitempty"`
	Establishments []Establishment `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"establishments,omitempty"`
	Billing        *Billing        `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"billing,omitempty"`
}

// TableName overrides the table name
func (Organization) TableName() string {
	return "organizations"
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Billing is the one-to-one billing record of an organization.
// Created automatically alongside the organization with a 14-day trial.
type Billing struct {
	ID                   string        `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID       string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"organization_id"`
	StripeCustomerID     *string       `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string       `json:"stripe_subscription_id,omitempty"`
	Status               BillingStatus `gorm:"not null;default:trial" json:"status"`
	PlanName             string        `gorm:"not null;default:trial" json:"plan_name"`
	TrialEndsAt          *time.Time    `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd     *time.Time    `json:"current_period_end,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// TableName overrides the table name
func (Billing) TableName() string {
	return "billing"
}

func (b *Billing) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TrialDays is the trial window granted to every new organization.
const TrialDays = 14
