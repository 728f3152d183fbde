package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avisgenius/backend-go/internal/handler"
	"github.com/avisgenius/backend-go/internal/middleware"
)

func SetupRouter(
	authHandler *handler.AuthHandler,
	establishmentHandler *handler.EstablishmentHandler,
	reviewHandler *handler.ReviewHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(middleware.Metrics())

	// Public routes
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes (Public)
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API routes
	api := r.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/auth/me", authHandler.Me)

		api.GET("/establishments", establishmentHandler.List)
		api.POST("/establishments", establishmentHandler.Create)
		api.GET("/establishments/:id", establishmentHandler.Get)
		api.PUT("/establishments/:id", establishmentHandler.Update)
		api.DELETE("/establishments/:id", establishmentHandler.Delete)
		api.PUT("/establishments/:id/permissions", establishmentHandler.SetPermission)
		api.POST("/establishments/:id/reviews/import", establishmentHandler.ImportReviews)

		api.GET("/reviews", reviewHandler.List)
		api.POST("/reviews/:id/generate", reviewHandler.Generate)
		api.POST("/reviews/:id/respond", reviewHandler.Respond)

		api.GET("/users", userHandler.List)
		api.POST("/users", userHandler.Invite)
		api.PUT("/users/:id", userHandler.Update)
		api.DELETE("/users/:id", userHandler.Delete)
	}

	// Cross-tenant admin routes
	admin := r.Group("/api/v1/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		admin.GET("/stats", adminHandler.Stats)

		admin.GET("/organizations", adminHandler.ListOrganizations)
		admin.POST("/organizations", adminHandler.CreateOrganization)
		admin.GET("/organizations/:id", adminHandler.GetOrganization)
		admin.PUT("/organizations/:id", adminHandler.UpdateOrganization)
		admin.DELETE("/organizations/:id", adminHandler.DeleteOrganization)

		admin.GET("/establishments", adminHandler.ListEstablishments)

		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", adminHandler.CreateUser)
		admin.PUT("/users/:id", adminHandler.UpdateUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)

		admin.GET("/billing/:orgId", adminHandler.GetBilling)
		admin.PUT("/billing/:orgId", adminHandler.UpdateBilling)

		admin.GET("/ai-templates", adminHandler.ListTemplates)
		admin.POST("/ai-templates", adminHandler.CreateTemplate)
		admin.PUT("/ai-templates/:id", adminHandler.UpdateTemplate)
		admin.DELETE("/ai-templates/:id", adminHandler.DeleteTemplate)

		admin.GET("/activity-logs", adminHandler.ActivityLogs)
	}

	return r
}
