package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/controller"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/security"
	"lms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	video      *repository.VideoRepository
	resource   *repository.ResourceRepository
	enrollment *repository.EnrollmentRepository
	progress   *repository.VideoProgressRepository
	note       *repository.NoteRepository
	notif      *repository.NotificationRepository
	analytics  *repository.AnalyticsRepository
}

type services struct {
	storage      *service.StorageService
	mail         *service.MailService
	auth         *service.AuthService
	user         *service.UserService
	notification *service.NotificationService
	course       *service.CourseService
	enrollment   *service.EnrollmentService
	progress     *service.ProgressService
	note         *service.NoteService
	dashboard    *service.DashboardService
	analytics    *service.AnalyticsService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	catalog      *controller.CatalogController
	progress     *controller.ProgressController
	notification *controller.NotificationController
	note         *controller.NoteController
	dashboard    *controller.DashboardController
	analytics    *controller.AnalyticsController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新配置并通知各订阅方
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		video:      repository.NewVideoRepository(db),
		resource:   repository.NewResourceRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		progress:   repository.NewVideoProgressRepository(db),
		note:       repository.NewNoteRepository(db),
		notif:      repository.NewNotificationRepository(db),
		analytics:  repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.mail = service.NewMailService(cfg)
	s.auth = service.NewAuthService(repos.user, s.mail, rdb, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.notification = service.NewNotificationService(repos.notif, repos.enrollment, repos.user)
	s.course = service.NewCourseService(
		repos.course,
		repos.video,
		repos.resource,
		repos.enrollment,
		repos.progress,
		s.storage,
		s.notification,
		rdb,
		cfg,
	)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, repos.video, repos.progress, s.storage)
	s.progress = service.NewProgressService(repos.progress, repos.video, repos.course, repos.enrollment, s.storage)
	s.note = service.NewNoteService(repos.note, repos.video, repos.enrollment)
	s.dashboard = service.NewDashboardService(repos.user, repos.course, s.enrollment, s.progress, s.storage)
	s.analytics = service.NewAnalyticsService(
		repos.analytics,
		repos.enrollment,
		repos.course,
		repos.video,
		repos.resource,
		repos.progress,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		course:       controller.NewCourseController(s.course),
		catalog:      controller.NewCatalogController(s.course, s.enrollment),
		progress:     controller.NewProgressController(s.progress),
		notification: controller.NewNotificationController(s.notification),
		note:         controller.NewNoteController(s.note),
		dashboard:    controller.NewDashboardController(s.dashboard),
		analytics:    controller.NewAnalyticsController(s.analytics),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lms-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
