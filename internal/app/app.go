package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/controller"
	"skillbridge_backend/internal/repository"
	"skillbridge_backend/internal/service"
	"skillbridge_backend/internal/util"
	"skillbridge_backend/pkg/certimage"
	"skillbridge_backend/pkg/configwatcher"
	"skillbridge_backend/pkg/database"
	"skillbridge_backend/pkg/logger"
	"skillbridge_backend/pkg/monitoring"
	"skillbridge_backend/pkg/security"
	"skillbridge_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

// ConfigDir 配置文件目录，热加载时监听
const ConfigDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Signer          *util.SessionSigner
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	enrollment  *repository.EnrollmentRepository
	progress    *repository.ProgressRepository
	certificate *repository.CertificateRepository
	quiz        *repository.QuizRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	course      *service.CourseService
	progress    *service.ProgressService
	dashboard   *service.DashboardService
	quiz        *service.QuizService
	certificate *service.CertificateService
}

type controllers struct {
	auth        *controller.AuthController
	course      *controller.CourseController
	progress    *controller.ProgressController
	dashboard   *controller.DashboardController
	quiz        *controller.QuizController
	certificate *controller.CertificateController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		progress:    repository.NewProgressRepository(db),
		certificate: repository.NewCertificateRepository(db),
		quiz:        repository.NewQuizRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, storage *service.StorageService, renderer service.CertificateRenderer) *services {
	s := &services{storage: storage}

	s.auth = service.NewAuthService(db, repos.user, repos.course, repos.enrollment, a.Signer, cfg)
	s.course = service.NewCourseService(db, repos.course)
	s.progress = service.NewProgressService(db, repos.course, repos.enrollment, repos.progress)
	s.dashboard = service.NewDashboardService(db, repos.enrollment, repos.progress, repos.certificate)
	s.quiz = service.NewQuizService(db, repos.quiz, repos.user, repos.course)
	s.certificate = service.NewCertificateService(
		db,
		repos.certificate,
		repos.user,
		repos.course,
		storage,
		renderer,
		&cfg.Certificate,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		course:      controller.NewCourseController(s.course),
		progress:    controller.NewProgressController(s.progress),
		dashboard:   controller.NewDashboardController(s.dashboard),
		quiz:        controller.NewQuizController(s.quiz),
		certificate: controller.NewCertificateController(s.certificate),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 生产入口：初始化日志、数据库、存储、追踪
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	app, err := NewAppWithDB(cfg, db)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// NewAppWithDB 在已打开的数据库上组装路由，测试直接使用
func NewAppWithDB(cfg *config.Config, db *gorm.DB) (*App, error) {
	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	renderer := certimage.NewRenderer(cfg.Certificate.FontPath)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Signer: util.NewSessionSigner(cfg.JWT.Secret, cfg.JWT.ExpireTime),
	}

	// 热加载时轮换会话密钥，旧令牌随之失效
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		if newCfg.JWT.Secret != "" && newCfg.JWT.Secret != app.Config.JWT.Secret {
			app.Signer.Rotate(newCfg.JWT.Secret)
			app.Config.JWT.Secret = newCfg.JWT.Secret
			logger.Log.Info("Session secret rotated")
		}
	})

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, storage, renderer)
	controllers := app.initControllers(app.services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app, nil
}

func (a *App) applyConfig(newCfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(newCfg)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.Watch(watchCtx, ConfigDir, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
