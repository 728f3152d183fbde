package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avisgenius/backend-go/internal/config"
	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/worker"
)

// setupTestDB creates a new in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Organization{},
		&models.Billing{},
		&models.User{},
		&models.Establishment{},
		&models.UserEstablishmentPermission{},
		&models.Review{},
		&models.Response{},
		&models.ActivityLog{},
		&models.AiTemplate{},
	)
	require.NoError(t, err)

	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		JWTSecret:       "test-secret",
		TokenExpiration: 3600,
		GenerateTimeout: 5,
		AdminEmails:     []string{"root@platform.test"},
	}
}

// testEnv wires the full service stack against one in-memory database.
type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	pool     *worker.Pool
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
	estRepo  repository.EstablishmentRepository
	revRepo  repository.ReviewRepository
	actRepo  repository.ActivityLogRepository
	billRepo repository.BillingRepository
	tplRepo  repository.AiTemplateRepository
	policy   *AccessPolicy
	activity ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	cfg := testConfig()
	logger := testLogger()
	pool := worker.NewPool(logger)
	t.Cleanup(func() { pool.Shutdown(5 * time.Second) })

	env := &testEnv{
		db:       db,
		cfg:      cfg,
		pool:     pool,
		orgRepo:  repository.NewOrganizationRepository(db),
		userRepo: repository.NewUserRepository(db),
		estRepo:  repository.NewEstablishmentRepository(db),
		revRepo:  repository.NewReviewRepository(db),
		actRepo:  repository.NewActivityLogRepository(db),
		billRepo: repository.NewBillingRepository(db),
		tplRepo:  repository.NewAiTemplateRepository(db),
	}
	env.policy = NewAccessPolicy(env.estRepo)
	env.activity = NewActivityService(env.actRepo, pool, logger)
	return env
}

func (e *testEnv) createOrg(t *testing.T, name string) *models.Organization {
	org := &models.Organization{
		Name:              name,
		Slug:              GenerateSlug(name),
		DefaultAiTone:     models.ToneProfessional,
		MaxUsers:          5,
		MaxEstablishments: 10,
		IsActive:          true,
	}
	require.NoError(t, e.orgRepo.Create(org))
	return org
}

func (e *testEnv) createUser(t *testing.T, org *models.Organization, email string, role models.Role) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
	}
	if org != nil {
		user.OrganizationID = &org.ID
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *testEnv) createEstablishment(t *testing.T, org *models.Organization, name string) *models.Establishment {
	est := &models.Establishment{
		OrganizationID: org.ID,
		Name:           name,
		AiTone:         models.ToneProfessional,
		IsActive:       true,
	}
	require.NoError(t, e.estRepo.Create(est))
	return est
}

func (e *testEnv) createReview(t *testing.T, est *models.Establishment, rating int, content string) *models.Review {
	review := &models.Review{
		EstablishmentID: est.ID,
		AuthorName:      "Jean Dupont",
		Rating:          rating,
		PublishedAt:     time.Now(),
		Sentiment:       ClassifySentiment(rating),
		Status:          models.ReviewPending,
	}
	if content != "" {
		review.Content = &content
	}
	require.NoError(t, e.revRepo.Create(review))
	return review
}

func (e *testEnv) grantPermission(t *testing.T, user *models.User, est *models.Establishment, view, respond, manage bool) {
	require.NoError(t, e.estRepo.UpsertPermission(&models.UserEstablishmentPermission{
		UserID:          user.ID,
		EstablishmentID: est.ID,
		CanView:         view,
		CanRespond:      respond,
		CanManage:       manage,
	}))
}

// fakeGenerator implements ai.Generator for tests.
type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.text, nil
}
