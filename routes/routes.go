package routes

import (
	"journal-editorial-api/controllers"
	"journal-editorial-api/middleware"
	"journal-editorial-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Editorial API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/profile/password", controllers.ChangePassword)

			// Articles
			articles := protected.Group("/articles")
			{
				articles.GET("", controllers.GetArticles)
				articles.GET("/:id", controllers.GetArticle)

				// Only authors submit manuscripts
				articles.POST("", middleware.RequireRole(models.RoleAuthor), controllers.SubmitArticle)

				// Reviewer assignment is an editorial action
				editorialRoles := middleware.RequireRole(
					models.RoleEditor, models.RoleChiefEditor,
					models.RoleAssociateEditor, models.RoleAdmin,
				)
				articles.POST("/:id/assign-reviewers", editorialRoles, controllers.AutoAssignReviewers)
				articles.POST("/:id/reviewers", editorialRoles, controllers.DirectAssignReviewers)
			}

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/transitions", controllers.GetAllowedTransitions)
				submissions.PUT("/:id/status", middleware.RequireRole(
					models.RoleEditorialAssistant, models.RoleAssociateEditor,
					models.RoleEditor, models.RoleChiefEditor, models.RoleAdmin,
				), controllers.UpdateSubmissionStatus)
			}

			// Reviews
			reviews := protected.Group("/reviews")
			{
				reviews.GET("", middleware.RequireRole(models.RoleReviewer), controllers.GetMyReviews)
				reviews.PUT("/:id/respond", middleware.RequireRole(models.RoleReviewer), controllers.RespondToReview)
				reviews.PUT("/:id/start", middleware.RequireRole(models.RoleReviewer), controllers.StartReview)
				reviews.PUT("/:id/submit", middleware.RequireRole(models.RoleReviewer), controllers.SubmitReview)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/reviews/sweep-overdue", controllers.SweepOverdueReviews)
			}
		}

	}

	// 404 catch-all
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
