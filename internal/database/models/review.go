package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewStatus is the workflow state of a review.
// Transitions only move forward: pending -> responded (via the respond action)
// or pending -> ignored (reserved, terminal).
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewResponded ReviewStatus = "responded"
	ReviewIgnored   ReviewStatus = "ignored"
)

// Sentiment is the triage classification of a review.
type Sentiment string

const (
	SentimentUrgent   Sentiment = "urgent"
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
)

// Review is an external customer review attached to one establishment.
// GoogleReviewID dedupes against re-ingestion from the review source.
type Review struct {
	ID              string       `gorm:"type:varchar(36);primarykey" json:"id"`
	EstablishmentID string       `gorm:"type:varchar(36);not null;index" json:"establishment_id"`
	GoogleReviewID  *string      `gorm:"uniqueIndex" json:"google_review_id,omitempty"`
	AuthorName      string       `gorm:"not null" json:"author_name"`
	AuthorPhotoURL  *string      `json:"author_photo_url,omitempty"`
	Rating          int          `gorm:"not null" json:"rating"`
	Content         *string      `json:"content,omitempty"`
	PublishedAt     time.Time    `gorm:"not null" json:"published_at"`
	Sentiment       Sentiment    `gorm:"not null;default:neutral" json:"sentiment"`
	Status          ReviewStatus `gorm:"not null;default:pending" json:"status"`
	CreatedAt       time.Time    `json:"created_at"`

	// Relationships
	Response *Response `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"response,omitempty"`
}

// TableName overrides the table name
func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Response is the drafted or posted reply to a review. A review has at most
// one response at any time; generate and respond both upsert by ReviewID.
type Response struct {
	ID              string     `gorm:"type:varchar(36);primarykey" json:"id"`
	ReviewID        string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"review_id"`
	UserID          *string    `gorm:"type:varchar(36)" json:"user_id,omitempty"`
	AiGeneratedText string     `gorm:"not null" json:"ai_generated_text"`
	FinalText       *string    `json:"final_text,omitempty"`
	PostedToGoogle  bool       `gorm:"not null;default:false" json:"posted_to_google"`
	PostedAt        *time.Time `json:"posted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName overrides the table name
func (Response) TableName() string {
	return "responses"
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
