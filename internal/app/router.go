package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerParentRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// Catalog browsing is open; logged-in staff see unpublished courses too.
		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.course.List)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(cfg), c.course.Get)

		// Signup wizard runs before any account exists.
		wizards := public.Group("/wizards")
		wizards.Use(middleware.TryAuthMiddleware(cfg))
		{
			wizards.POST("", c.wizard.Start)
			wizards.GET("/:id", c.wizard.Get)
			wizards.POST("/:id/steps", c.wizard.SubmitStep)
			wizards.POST("/:id/submit", c.wizard.Submit)
		}
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/courses/enrolled", c.course.ListEnrolled)
	rg.GET("/courses/:id/lectures/:lectureId", c.course.GetLecture)

	rg.POST("/courses/:id/enroll", c.enrollment.Enroll)
	rg.GET("/courses/:id/progress", c.enrollment.GetProgress)
	rg.POST("/progress", c.enrollment.RecordProgress)
	rg.GET("/progress", c.enrollment.ListProgress)

	rg.GET("/dashboard/student", c.dashboard.Student)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Management))
	{
		teacher.GET("/courses/teaching", c.course.ListTeaching)
		teacher.POST("/courses", c.course.Create)
		teacher.PUT("/courses/:id", c.course.Update)
		teacher.DELETE("/courses/:id", c.course.Delete)
		teacher.PATCH("/courses/:id/publish", c.course.TogglePublish)
		teacher.POST("/courses/:id/schedule", c.course.SchedulePublish)

		teacher.POST("/courses/:id/lectures", c.course.AddLecture)
		teacher.PUT("/courses/:id/lectures/:lectureId", c.course.UpdateLecture)
		teacher.DELETE("/courses/:id/lectures/:lectureId", c.course.RemoveLecture)

		teacher.GET("/courses/:id/report", c.dashboard.CourseProgress)
		teacher.GET("/courses/:id/report/export", c.dashboard.ExportCourseProgress)
	}
}

func (a *App) registerParentRoutes(rg *gin.RouterGroup, c *controllers) {
	parent := rg.Group("")
	parent.Use(middleware.RoleMiddleware(model.Parent))
	{
		parent.GET("/dashboard/parent", c.dashboard.Parent)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Admin),
	)
	{
		admin.GET("/users", c.user.List)
		admin.POST("/users", c.user.Create)
		admin.GET("/users/:id", c.user.Get)
		admin.PUT("/users/:id", c.user.Update)
		admin.DELETE("/users/:id", c.user.Delete)
		admin.PATCH("/users/:id/disabled", c.user.SetDisabled)
		admin.POST("/parent-links", c.user.LinkParent)
	}
}
