package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/avisgenius/backend-go/internal/ai"
	"github.com/avisgenius/backend-go/internal/api"
	"github.com/avisgenius/backend-go/internal/config"
	"github.com/avisgenius/backend-go/internal/database"
	"github.com/avisgenius/backend-go/internal/database/repository"
	"github.com/avisgenius/backend-go/internal/database/service"
	"github.com/avisgenius/backend-go/internal/handler"
	"github.com/avisgenius/backend-go/internal/logger"
	"github.com/avisgenius/backend-go/internal/middleware"
	"github.com/avisgenius/backend-go/internal/worker"
)

func main() {
	// 1. Environment & Config
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting reputation backend...",
		"environment", cfg.AppEnv,
	)

	// 3. Connect to Database
	if err := database.ConnectDatabase(cfg, appLogger); err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	db := database.GetDatabase()

	// 4. Initialize Repositories
	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	estRepo := repository.NewEstablishmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	templateRepo := repository.NewAiTemplateRepository(db)

	// 5. Background worker pool for audit-log appends
	pool := worker.NewPool(appLogger)
	defer pool.Shutdown(10 * time.Second)

	// 6. Initialize Services
	activityService := service.NewActivityService(activityRepo, pool, appLogger)
	policy := service.NewAccessPolicy(estRepo)
	generator := ai.NewClient(cfg, appLogger)

	authService := service.NewAuthService(userRepo, orgRepo, activityService, cfg, appLogger)
	establishmentService := service.NewEstablishmentService(estRepo, orgRepo, userRepo, policy, activityService, appLogger)
	reviewService := service.NewReviewService(reviewRepo, estRepo, policy, generator, activityService, cfg, appLogger)
	userService := service.NewUserService(userRepo, orgRepo, estRepo, activityService, appLogger)
	adminService := service.NewAdminService(orgRepo, userRepo, estRepo, reviewRepo, billingRepo, templateRepo, activityService, appLogger)

	// 7. Login rate limiter (falls back to no-op when Redis is down)
	loginLimiter, err := middleware.NewLoginLimiter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using no-op login limiter", "error", err)
		loginLimiter = middleware.NewNoOpLoginLimiter(appLogger)
	}
	defer loginLimiter.Close()

	// 8. Initialize Handlers & Middleware
	authHandler := handler.NewAuthHandler(authService, loginLimiter, appLogger)
	establishmentHandler := handler.NewEstablishmentHandler(establishmentService, reviewService, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)
	userHandler := handler.NewUserHandler(userService, appLogger)
	adminHandler := handler.NewAdminHandler(adminService, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(authService, cfg, appLogger)

	// 9. Router & HTTP Server
	r := api.SetupRouter(authHandler, establishmentHandler, reviewHandler, userHandler, adminHandler, authMiddleware)

	addr := fmt.Sprintf(":%s", cfg.ApiServicePort)
	appLogger.Info("🌍 [Go] HTTP Server running...", "addr", addr)
	if err := r.Run(addr); err != nil {
		appLogger.Error("❌ HTTP Server failed", "error", err)
		os.Exit(1)
	}
}
