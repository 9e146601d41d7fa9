package app

import (
	"skillbridge_backend/docs"
	"skillbridge_backend/internal/middleware"
	"skillbridge_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.services.auth))
	{
		a.registerStudentRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		{
			auth.POST("/register", c.auth.Register)
			auth.POST("/login", c.auth.Login)
		}

		public.GET("/courses", c.course.ListCourses)
		public.GET("/quiz/questions", c.quiz.GetQuestions)

		// 证书验证与下载对外公开，凭证书编号访问
		certificates := public.Group("/certificates")
		{
			certificates.GET("/verify/:certificateId", c.certificate.Verify)
			certificates.GET("/download/:certificateId", c.certificate.Download)
			certificates.GET("/qr/:certificateId", c.certificate.QRCode)
		}
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)

	group.GET("/courses/:courseId/skillsnaps", c.course.ListSkillsnaps)

	group.GET("/enrollments", c.progress.ListEnrollments)
	group.POST("/enrollments", c.progress.Enroll)
	group.POST("/skillsnaps/:skillsnapId/complete", c.progress.CompleteSkillsnap)

	group.GET("/dashboard", c.dashboard.GetDashboard)

	group.POST("/quiz/responses", c.quiz.SubmitResponses)
	group.GET("/recommendations", c.quiz.GetRecommendations)

	group.POST("/certificates/generate", c.certificate.Generate)
	group.GET("/certificates", c.certificate.List)
}
