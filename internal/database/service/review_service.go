package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avisgenius/backend-go/internal/ai"
	"github.com/avisgenius/backend-go/internal/config"
	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

// ReviewInput is one review coming from the external review source.
type ReviewInput struct {
	GoogleReviewID *string
	AuthorName     string
	AuthorPhotoURL *string
	Rating         int
	Content        *string
	PublishedAt    time.Time
}

// ReviewService governs the review lifecycle: listing under access control,
// ingestion from the review source, AI draft generation and posting.
type ReviewService interface {
	// ListReviews returns reviews across the user's accessible establishments,
	// most recent first. A requested establishmentId outside the accessible
	// set fails with ErrAccessDenied.
	ListReviews(user *models.User, establishmentID string, status *models.ReviewStatus) ([]models.Review, error)

	// GenerateDraft builds the prompt, calls the generator and upserts the
	// review's single response row with the new draft. The review status is
	// not changed; only Respond moves pending -> responded.
	GenerateDraft(ctx context.Context, user *models.User, reviewID, ipAddress string) (string, *models.Response, error)

	// Respond posts the final text: upserts the response row, marks it posted
	// and transitions the review to responded.
	Respond(ctx context.Context, user *models.User, reviewID, finalText, ipAddress string) (*models.Response, error)

	// IngestReviews upserts reviews from the source, deduplicating on the
	// external review id. Requires manage access on the establishment.
	IngestReviews(user *models.User, establishmentID string, inputs []ReviewInput) ([]models.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	estRepo    repository.EstablishmentRepository
	policy     *AccessPolicy
	generator  ai.Generator
	activity   ActivityService
	cfg        *config.Config
	logger     *slog.Logger
}

// NewReviewService creates a new review service instance
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	estRepo repository.EstablishmentRepository,
	policy *AccessPolicy,
	generator ai.Generator,
	activity ActivityService,
	cfg *config.Config,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		estRepo:    estRepo,
		policy:     policy,
		generator:  generator,
		activity:   activity,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *reviewService) ListReviews(user *models.User, establishmentID string, status *models.ReviewStatus) ([]models.Review, error) {
	accessible, err := s.policy.AccessibleEstablishmentIDs(user)
	if err != nil {
		return nil, err
	}

	ids := accessible
	if establishmentID != "" {
		found := false
		for _, id := range accessible {
			if id == establishmentID {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrAccessDenied
		}
		ids = []string{establishmentID}
	}

	return s.reviewRepo.FindByEstablishments(ids, status)
}

// loadAndAuthorize resolves review -> establishment and applies the respond
// gate. The fixed resource-then-permission order keeps 404 vs 403 responses
// deterministic.
func (s *reviewService) loadAndAuthorize(user *models.User, reviewID string) (*models.Review, *models.Establishment, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		return nil, nil, err
	}

	est, err := s.estRepo.FindByID(review.EstablishmentID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.policy.CanRespondToEstablishment(user, est); err != nil {
		return nil, nil, err
	}

	return review, est, nil
}

func (s *reviewService) GenerateDraft(ctx context.Context, user *models.User, reviewID, ipAddress string) (string, *models.Response, error) {
	s.logger.Info("🤖 [ReviewService] Generating draft", "review_id", reviewID, "user_id", user.ID)

	review, est, err := s.loadAndAuthorize(user, reviewID)
	if err != nil {
		return "", nil, err
	}

	prompt := BuildPrompt(est, review)

	genCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.GenerateTimeout)*time.Second)
	defer cancel()

	text, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		s.logger.Error("❌ [ReviewService] Generation failed", "error", err, "review_id", reviewID)
		// A draft persisted by a concurrent call is untouched; the caller may retry.
		return "", nil, fmt.Errorf("%w: %v", ai.ErrGenerationFailed, err)
	}

	resp, err := s.reviewRepo.UpsertDraft(reviewID, &user.ID, text)
	if err != nil {
		s.logger.Error("❌ [ReviewService] Failed to persist draft", "error", err, "review_id", reviewID)
		return "", nil, err
	}

	s.activity.Record(&est.OrganizationID, &user.ID, models.ActivityAiGenerated,
		fmt.Sprintf("Brouillon IA généré pour un avis de %s", review.AuthorName),
		map[string]any{"review_id": review.ID, "response_id": resp.ID}, ipAddress)

	s.logger.Info("✅ [ReviewService] Draft generated", "review_id", reviewID, "response_id", resp.ID)
	return text, resp, nil
}

func (s *reviewService) Respond(ctx context.Context, user *models.User, reviewID, finalText, ipAddress string) (*models.Response, error) {
	s.logger.Info("📮 [ReviewService] Posting response", "review_id", reviewID, "user_id", user.ID)

	// Authorization is evaluated independently here; a prior GenerateDraft in
	// the same session is not trusted.
	review, est, err := s.loadAndAuthorize(user, reviewID)
	if err != nil {
		return nil, err
	}

	if finalText == "" {
		return nil, ErrEmptyFinalText
	}

	resp, err := s.reviewRepo.UpsertPosted(reviewID, &user.ID, finalText, time.Now())
	if err != nil {
		s.logger.Error("❌ [ReviewService] Failed to persist response", "error", err, "review_id", reviewID)
		return nil, err
	}

	// The only writer of the pending -> responded transition.
	if err := s.reviewRepo.UpdateStatus(reviewID, models.ReviewResponded); err != nil {
		s.logger.Error("❌ [ReviewService] Failed to update review status", "error", err, "review_id", reviewID)
		return nil, err
	}

	s.activity.Record(&est.OrganizationID, &user.ID, models.ActivityReviewResponded,
		fmt.Sprintf("%s a répondu à un avis de %s", user.Name, review.AuthorName),
		map[string]any{"review_id": review.ID, "response_id": resp.ID}, ipAddress)

	s.logger.Info("✅ [ReviewService] Response posted", "review_id", reviewID, "response_id", resp.ID)
	return resp, nil
}

func (s *reviewService) IngestReviews(user *models.User, establishmentID string, inputs []ReviewInput) ([]models.Review, error) {
	est, err := s.estRepo.FindByID(establishmentID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanManageEstablishment(user, est); err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(inputs))
	for _, input := range inputs {
		if input.Rating < 1 || input.Rating > 5 {
			return nil, ErrInvalidRating
		}

		review := models.Review{
			EstablishmentID: est.ID,
			GoogleReviewID:  input.GoogleReviewID,
			AuthorName:      input.AuthorName,
			AuthorPhotoURL:  input.AuthorPhotoURL,
			Rating:          input.Rating,
			Content:         input.Content,
			PublishedAt:     input.PublishedAt,
			Sentiment:       ClassifySentiment(input.Rating),
			Status:          models.ReviewPending,
		}
		persisted, err := s.reviewRepo.UpsertByGoogleID(&review)
		if err != nil {
			s.logger.Error("❌ [ReviewService] Failed to ingest review", "error", err, "establishment_id", est.ID)
			return nil, err
		}
		reviews = append(reviews, *persisted)
	}

	s.logger.Info("✅ [ReviewService] Reviews ingested", "establishment_id", est.ID, "count", len(reviews))
	return reviews, nil
}

// Service errors
var (
	ErrEmptyFinalText = errors.New("finalText is required")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)
