package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-queue-server/internal/config"
	"clinic-queue-server/internal/handlers"
	"clinic-queue-server/internal/middleware"
	"clinic-queue-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	queueHandler := handlers.NewQueueHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Queue routes. Only doctors and their reception staff hold a queue;
		// owner resolution inside the handlers narrows further.
		queueRoutes := private.Group("/auth/queue")
		queueRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleStaff))
		{
			queueRoutes.GET("/", queueHandler.ListQueue)
			queueRoutes.POST("/add/", queueHandler.AddToQueue)
			queueRoutes.PATCH("/:id/", queueHandler.UpdateQueueItem)
			queueRoutes.DELETE("/:id/", queueHandler.RemoveFromQueue)
		}
	}
}
