package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/config"
	"github.com/avisgenius/backend-go/internal/database/models"
	"github.com/avisgenius/backend-go/internal/database/repository"
)

// bcryptCost keeps hashing well above 100ms per operation.
const bcryptCost = 12

// AuthService defines the interface for authentication business logic
type AuthService interface {
	// Register creates the organization, its trial billing record and the
	// owner user in one transaction, then issues a bearer token.
	Register(email, password, name, organizationName, ipAddress string) (*models.User, string, error)
	Login(email, password, ipAddress string) (*models.User, string, error)
	// ValidateToken returns the user id carried by a valid token. Malformed,
	// expired and badly signed tokens all yield the same ErrInvalidToken.
	ValidateToken(tokenString string) (string, error)
	GetUser(id string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	activity ActivityService
	cfg      *config.Config
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	activity ActivityService,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		activity: activity,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *authService) Register(email, password, name, organizationName, ipAddress string) (*models.User, string, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}
	if existing != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, "", ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, "", err
	}

	orgName := organizationName
	if orgName == "" {
		orgName = name
	}

	org := &models.Organization{
		Name: orgName,
		Slug: GenerateSlug(orgName),
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Role:         models.RoleOwner,
		IsActive:     true,
	}

	trialEndsAt := time.Now().AddDate(0, 0, models.TrialDays)
	bill := &models.Billing{
		Status:      models.BillingTrial,
		PlanName:    "trial",
		TrialEndsAt: &trialEndsAt,
	}

	err = s.orgRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		bill.OrganizationID = org.ID
		if err := tx.Create(bill).Error; err != nil {
			return fmt.Errorf("create billing: %w", err)
		}
		user.OrganizationID = &org.ID
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("❌ [AuthService] Registration transaction failed", "error", err)
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User registered", "user_id", user.ID, "organization_id", org.ID)
	return user, token, nil
}

func (s *authService) Login(email, password, ipAddress string) (*models.User, string, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("⚠️ [AuthService] Deactivated user attempted login", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Warn("⚠️ [AuthService] Failed to update last login", "error", err, "user_id", user.ID)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to issue token", "error", err)
		return nil, "", err
	}

	s.activity.Record(user.OrganizationID, &user.ID, models.ActivityLogin,
		fmt.Sprintf("%s s'est connecté", user.Name), nil, ipAddress)

	s.logger.Info("✅ [AuthService] User logged in", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

func (s *authService) GetUser(id string) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

func (s *authService) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Duration(s.cfg.TokenExpiration) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
