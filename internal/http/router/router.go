package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/artisan-backend/internal/config"
	"github.com/ignatzorin/artisan-backend/internal/http/handlers"
	"github.com/ignatzorin/artisan-backend/internal/http/middleware"
	"github.com/ignatzorin/artisan-backend/internal/models"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	requestHandler *handlers.RequestHandler,
	artisanHandler *handlers.ArtisanHandler,
	notificationHandler *handlers.NotificationHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	categoryHandler *handlers.CategoryHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Аутентификация с усиленным лимитом запросов.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.POST("/upgrade-to-artisan", authHandler.UpgradeToArtisan)
		protectedAuth.POST("/deactivate", authHandler.Deactivate)
	}

	// Публичные маршруты.
	api.GET("/categories", categoryHandler.List)
	api.GET("/categories/:id", middleware.UUIDValidator("id"), categoryHandler.Get)
	api.GET("/artisans", artisanHandler.List)
	api.GET("/artisans/:id", middleware.UUIDValidator("id"), artisanHandler.Get)
	api.GET("/artisans/:id/rating", middleware.UUIDValidator("id"), artisanHandler.Rating)

	// Защищённые маршруты.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		// Заявки заказчика.
		protected.POST("/requests", requestHandler.Create)
		protected.GET("/requests", requestHandler.ListMine)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), requestHandler.Get)
		protected.PATCH("/requests/:id/status", middleware.UUIDValidator("id"), requestHandler.UpdateStatus)
		protected.POST("/requests/:id/cancel", middleware.UUIDValidator("id"), requestHandler.Cancel)
		protected.POST("/requests/:id/feedback", middleware.UUIDValidator("id"), requestHandler.Feedback)

		// Уведомления.
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.DELETE("/notifications/read", notificationHandler.DeleteRead)
		protected.DELETE("/notifications", notificationHandler.DeleteAll)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)
	}

	// Кабинет мастера.
	artisan := api.Group("/artisan")
	artisan.Use(middleware.AuthMiddleware(tokenManager))
	artisan.Use(middleware.RequireRole(models.RoleArtisan, models.RoleAdmin))
	{
		artisan.GET("/requests", requestHandler.ListAssigned)
		artisan.POST("/requests/:id/accept", middleware.UUIDValidator("id"), requestHandler.Accept)
		artisan.POST("/requests/:id/complete", middleware.UUIDValidator("id"), requestHandler.Complete)
		artisan.GET("/availability", artisanHandler.GetAvailability)
		artisan.PUT("/availability", artisanHandler.SetAvailability)
		artisan.GET("/earnings", artisanHandler.Earnings)
		artisan.POST("/withdrawals", withdrawalHandler.Create)
		artisan.GET("/withdrawals", withdrawalHandler.ListMine)
	}

	// Панель администратора.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/requests", requestHandler.ListAll)
		admin.POST("/requests/:id/assign", middleware.UUIDValidator("id"), requestHandler.Assign)
		admin.PATCH("/requests/:id/status", middleware.UUIDValidator("id"), requestHandler.UpdateStatus)
		admin.PATCH("/requests/:id/price", middleware.UUIDValidator("id"), requestHandler.UpdatePrice)

		admin.GET("/withdrawals", withdrawalHandler.ListAll)
		admin.PATCH("/withdrawals/:id", middleware.UUIDValidator("id"), withdrawalHandler.UpdateStatus)

		admin.GET("/verifications", adminHandler.ListVerifications)
		admin.POST("/verifications/:id/review", middleware.UUIDValidator("id"), adminHandler.ReviewVerification)

		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", middleware.UUIDValidator("id"), categoryHandler.Update)
		admin.PATCH("/categories/:id/active", middleware.UUIDValidator("id"), categoryHandler.SetActive)

		admin.POST("/users/:id/deactivate", middleware.UUIDValidator("id"), adminHandler.DeactivateUser)
	}

	return r
}
