package routes

import (
	"gp-intake-api/controllers"
	"gp-intake-api/middleware"
	"gp-intake-api/models"

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
			public.POST("/auth/magic-link", controllers.RequestMagicLink)
			public.POST("/auth/magic-link/verify", controllers.VerifyMagicLink)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "GP Intake API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Fund applications (applicant form)
			applications := protected.Group("/applications")
			{
				applications.POST("", controllers.CreateApplication)
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.PUT("/:id/step/:step", controllers.UpdateApplicationStep)
				applications.POST("/:id/submit", controllers.SubmitApplication)
				applications.DELETE("/:id", controllers.DeleteApplication)

				// Documents
				applications.POST("/:id/documents", controllers.UploadDocument)
				applications.GET("/:id/documents", controllers.GetDocuments)
			}

			documents := protected.Group("/documents")
			{
				documents.GET("/:file_id/download", controllers.DownloadDocument)
				documents.DELETE("/:file_id", controllers.DeleteDocument)
			}

			// Reviewer workflow
			reviewer := protected.Group("/reviewer")
			reviewer.Use(middleware.RequireRole(models.RoleReviewer, models.RoleAdmin))
			{
				reviewer.GET("/assignments", controllers.GetMyAssignments)
				reviewer.POST("/assignments/:id/status", controllers.UpdateAssignmentStatus)
			}

			// Admin triage and allocation
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/applications", controllers.GetAdminApplications)
				admin.POST("/applications/:id/qualify", controllers.QualifyApplication)
				admin.POST("/applications/:id/disqualify", controllers.DisqualifyApplication)

				admin.POST("/assignments/allocate", controllers.AssignReviewers)
				admin.GET("/assignments", controllers.GetAssignments)
			}
		}
	}
}
