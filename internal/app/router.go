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

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/forgot-password", c.auth.ForgotPassword)
		public.POST("/auth/reset-password", c.auth.ResetPassword)

		// 目录与详情允许游客访问，带令牌则附带报名状态
		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.catalog.Catalog)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(cfg), c.catalog.Detail)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.POST("/auth/change-password", c.auth.ChangePassword)

		authGroup.GET("/users/me", c.user.GetProfile)
		authGroup.PUT("/users/me", c.user.UpdateProfile)
		authGroup.POST("/users/me/avatar", c.user.UploadAvatar)

		authGroup.GET("/courses/my", c.catalog.MyCourses)
		authGroup.POST("/courses/:id/enroll", c.catalog.Enroll)
		authGroup.GET("/courses/:id/videos/:videoId", c.catalog.VideoPlayback)
		authGroup.GET("/courses/:id/resources/:resourceId/download", c.catalog.DownloadResource)
		authGroup.GET("/courses/:id/progress", c.progress.CourseProgress)
		authGroup.GET("/courses/:id/progress/history", c.progress.CourseHistory)

		authGroup.POST("/videos/:videoId/progress", c.progress.Record)
		authGroup.GET("/progress/continue-watching", c.progress.ContinueWatching)
		authGroup.GET("/progress/history", c.progress.History)

		authGroup.POST("/videos/:videoId/notes", c.note.Create)
		authGroup.GET("/videos/:videoId/notes", c.note.ListByVideo)
		authGroup.GET("/notes", c.note.ListMine)
		authGroup.PUT("/notes/:id", c.note.Update)
		authGroup.DELETE("/notes/:id", c.note.Delete)

		authGroup.GET("/notifications/global", c.notification.ListGlobal)
		authGroup.GET("/notifications/relevant", c.notification.ListRelevant)
		authGroup.GET("/notifications/unread-count", c.notification.UnreadCount)
		authGroup.POST("/notifications/:notificationId/read", c.notification.MarkRead)

		authGroup.GET("/dashboard", c.dashboard.Personal)
	}

	// 管理端路由：admin 与 staff
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(
		middleware.AuthMiddleware(cfg),
		middleware.RoleMiddleware(model.Admin, model.Staff),
		middleware.ActivityMiddleware(repos.user),
	)
	{
		adminGroup.GET("/courses", c.course.List)
		adminGroup.POST("/courses", c.course.Create)
		adminGroup.GET("/courses/:id", c.course.Detail)
		adminGroup.PUT("/courses/:id", c.course.Update)
		adminGroup.DELETE("/courses/:id", c.course.Delete)
		adminGroup.POST("/courses/:id/image", c.course.UploadImage)

		adminGroup.POST("/courses/:id/videos", c.course.UploadVideo)
		adminGroup.PUT("/courses/:id/videos/:videoId", c.course.UpdateVideo)
		adminGroup.DELETE("/courses/:id/videos/:videoId", c.course.DeleteVideo)

		adminGroup.POST("/courses/:id/resources", c.course.UploadResource)
		adminGroup.PUT("/courses/:id/resources/:resourceId", c.course.UpdateResource)
		adminGroup.DELETE("/courses/:id/resources/:resourceId", c.course.DeleteResource)

		adminGroup.POST("/courses/:id/notifications", c.notification.NotifyCourse)
		adminGroup.POST("/notifications/broadcast", c.notification.Broadcast)
		adminGroup.PUT("/notifications/:notificationId", c.notification.UpdateMessage)

		adminGroup.GET("/videos/:videoId/progress", c.progress.AdminVideoProgress)

		adminGroup.GET("/analytics/daily-active-users", c.analytics.DailyActiveUsers)
		adminGroup.GET("/analytics/active-users", c.analytics.ActiveUserSummary)
		adminGroup.GET("/analytics/completion-rates", c.analytics.CompletionRates)
		adminGroup.GET("/analytics/platform", c.analytics.PlatformStatistics)

		// 角色调整仅限 admin
		adminGroup.PUT("/users/:id/role", middleware.RoleMiddleware(model.Admin), c.user.SetRole)
	}
}
