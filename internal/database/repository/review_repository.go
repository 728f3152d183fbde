package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// ReviewRepository defines the interface for review and response data
// operations. Response writes are atomic upserts keyed by review_id so a
// review can never end up with two response rows (unique index backs this).
type ReviewRepository interface {
	Create(review *models.Review) error
	FindByID(id string) (*models.Review, error)
	FindByEstablishments(establishmentIDs []string, status *models.ReviewStatus) ([]models.Review, error)
	UpdateStatus(id string, status models.ReviewStatus) error

	// UpsertByGoogleID inserts the review or, when a row with the same
	// google_review_id already exists, refreshes its source-owned fields.
	// Workflow-owned fields (status) are left untouched on conflict. The
	// returned row is always the persisted one.
	UpsertByGoogleID(review *models.Review) (*models.Review, error)

	Count() (int64, error)
	CountPending() (int64, error)
	CountUrgentPending() (int64, error)

	FindResponseByReview(reviewID string) (*models.Response, error)
	UpsertDraft(reviewID string, userID *string, aiGeneratedText string) (*models.Response, error)
	UpsertPosted(reviewID string, userID *string, finalText string, postedAt time.Time) (*models.Response, error)
	CountPostedResponses() (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) FindByID(id string) (*models.Review, error) {
	var review models.Review
	err := r.db.First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByEstablishments(establishmentIDs []string, status *models.ReviewStatus) ([]models.Review, error) {
	if len(establishmentIDs) == 0 {
		return []models.Review{}, nil
	}

	query := r.db.Where("establishment_id IN ?", establishmentIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var reviews []models.Review
	// Most recent first is a user-facing contract, not an implementation detail.
	err := query.Order("published_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) UpdateStatus(id string, status models.ReviewStatus) error {
	return r.db.Model(&models.Review{}).Where("id = ?", id).Update("status", status).Error
}

func (r *reviewRepository) UpsertByGoogleID(review *models.Review) (*models.Review, error) {
	if review.GoogleReviewID == nil {
		if err := r.db.Create(review).Error; err != nil {
			return nil, err
		}
		return review, nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "google_review_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"author_name", "author_photo_url", "rating", "content", "published_at", "sentiment"}),
	}).Create(review).Error
	if err != nil {
		return nil, err
	}
	// The conflict path keeps the existing row's id; re-read the live row.
	var live models.Review
	if err := r.db.First(&live, "google_review_id = ?", *review.GoogleReviewID).Error; err != nil {
		return nil, err
	}
	return &live, nil
}

func (r *reviewRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Count(&count).Error
	return count, err
}

func (r *reviewRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Where("status = ?", models.ReviewPending).Count(&count).Error
	return count, err
}

func (r *reviewRepository) CountUrgentPending() (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("status = ? AND sentiment = ?", models.ReviewPending, models.SentimentUrgent).
		Count(&count).Error
	return count, err
}

func (r *reviewRepository) FindResponseByReview(reviewID string) (*models.Response, error) {
	var resp models.Response
	err := r.db.Where("review_id = ?", reviewID).First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (r *reviewRepository) UpsertDraft(reviewID string, userID *string, aiGeneratedText string) (*models.Response, error) {
	resp := &models.Response{
		ReviewID:        reviewID,
		UserID:          userID,
		AiGeneratedText: aiGeneratedText,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ai_generated_text", "user_id"}),
	}).Create(resp).Error
	if err != nil {
		return nil, err
	}
	// The conflict path keeps the existing row's id; re-read the live row.
	return r.FindResponseByReview(reviewID)
}

func (r *reviewRepository) UpsertPosted(reviewID string, userID *string, finalText string, postedAt time.Time) (*models.Response, error) {
	resp := &models.Response{
		ReviewID:        reviewID,
		UserID:          userID,
		AiGeneratedText: finalText,
		FinalText:       &finalText,
		PostedToGoogle:  true,
		PostedAt:        &postedAt,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"final_text", "posted_to_google", "posted_at", "user_id"}),
	}).Create(resp).Error
	if err != nil {
		return nil, err
	}
	return r.FindResponseByReview(reviewID)
}

func (r *reviewRepository) CountPostedResponses() (int64, error) {
	var count int64
	err := r.db.Model(&models.Response{}).Where("posted_to_google = ?", true).Count(&count).Error
	return count, err
}

// Repository errors
var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrResponseNotFound = errors.New("response not found")
)
