package routes

import (
	"scrumboard-api/internal/config"
	"scrumboard-api/internal/handlers"
	"scrumboard-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config) *gin.Engine {
	handlers.Init(cfg)

	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Scrum board API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(cfg.Auth.UserCacheTTL))
	{
		protectedRoutes.POST("/logout", handlers.Logout)

		// Task endpoints
		protectedRoutes.GET("/tasks", handlers.GetTasks)
		protectedRoutes.GET("/tasks/:id", handlers.GetTaskByID)
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.PUT("/tasks/:id", handlers.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", handlers.UpdateTaskStatus)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		protectedRoutes.POST("/tasks/:id/lock", handlers.LockTaskField)
		protectedRoutes.POST("/tasks/:id/unlock", handlers.UnlockTaskField)

		// Group endpoints (reorder registered before :id routes)
		protectedRoutes.GET("/groups", handlers.GetGroups)
		protectedRoutes.POST("/groups", handlers.CreateGroup)
		protectedRoutes.PUT("/groups/reorder", handlers.ReorderGroups)
		protectedRoutes.PUT("/groups/:id", handlers.UpdateGroup)
		protectedRoutes.DELETE("/groups/:id", handlers.DeleteGroup)

		// User endpoints
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		protectedRoutes.GET("/users/pending", handlers.GetPendingUsers)
		protectedRoutes.GET("/users/:id", handlers.GetUserByID)
		protectedRoutes.POST("/users/:id/approve", handlers.ApproveUser)
		protectedRoutes.POST("/users/:id/reject", handlers.RejectUser)
		protectedRoutes.PATCH("/users/:id", handlers.UpdateUser)
		protectedRoutes.PATCH("/users/:id/status", handlers.SetUserStatus)
		protectedRoutes.DELETE("/users/:id", handlers.DeleteUser)

		// Audit trail
		protectedRoutes.GET("/audit", handlers.GetAuditLog)

		// Realtime board events
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
