package app

import (
	"designhub_backend/docs"
	"designhub_backend/internal/middleware"
	"designhub_backend/internal/model"
	"designhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. catalog browsing, anonymous or signed in
	a.registerPublicRoutes(router, c)

	// 2. everything that needs a learner session
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.jwtSecret))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	public.Use(middleware.TryAuthMiddleware(a.jwtSecret))
	{
		public.GET("/health", c.health.HealthCheck)

		public.GET("/designs", c.catalog.ListDesigns)
		public.GET("/designs/:id", c.catalog.GetDesign)
		public.GET("/designs/:id/reviews", c.catalog.ListReviews)
		public.GET("/categories", c.catalog.ListCategories)
		public.GET("/pricing-plans", c.catalog.ListPricingPlans)
		public.GET("/courses", c.course.ListCourses)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.user.Me)

	// catalog interactions
	rg.POST("/designs/:id/like", c.catalog.ToggleLike)
	rg.POST("/designs/:id/reviews", c.catalog.CreateReview)
	rg.GET("/purchases/my", c.catalog.ListMyPurchases)

	// enrollment
	rg.POST("/courses/:courseId/enroll", c.course.Enroll)
	rg.GET("/enrollments/my", c.course.ListMyEnrollments)

	// course progress
	learning := rg.Group("/learning")
	{
		learning.GET("/activity", c.learning.ListActivity)
		learning.GET("/courses/:courseId", c.learning.GetCourseProgress)
		learning.GET("/courses/:courseId/summary", c.learning.GetSummary)
		learning.GET("/courses/:courseId/lessons/:module/:lesson", c.learning.GetLesson)
		learning.POST("/courses/:courseId/lessons/:module/:lesson/complete", c.learning.CompleteLesson)
		learning.POST("/courses/:courseId/notes", c.learning.AddNote)
		learning.PATCH("/courses/:courseId/notes/:noteId", c.learning.UpdateNote)
		learning.DELETE("/courses/:courseId/notes/:noteId", c.learning.DeleteNote)
	}

	// notifications
	rg.GET("/notifications", c.notification.List)
	rg.GET("/notifications/stream", c.notification.Stream)
	rg.DELETE("/notifications", c.notification.DismissAll)
	rg.DELETE("/notifications/:id", c.notification.Dismiss)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/")
	instructor.Use(middleware.RoleMiddleware(model.Instructor, model.Admin))
	{
		instructor.DELETE("/courses/:courseId/cache", c.course.InvalidateCache)
	}
}
