package app

import (
	"context"
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/config"
	"designhub_backend/internal/controller"
	"designhub_backend/internal/middleware"
	"designhub_backend/internal/progress"
	"designhub_backend/internal/repository"
	"designhub_backend/internal/service"
	"designhub_backend/pkg/configwatcher"
	"designhub_backend/pkg/database"
	"designhub_backend/pkg/logger"
	"designhub_backend/pkg/monitoring"
	"designhub_backend/pkg/security"
	"designhub_backend/pkg/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	limiter         *security.Limiter
	mu              sync.RWMutex
	configCallbacks []func(*config.Config)
	stop            context.CancelFunc
}

type repositories struct {
	notification *repository.NotificationRepository
	activity     *repository.ActivityRepository
	courseCache  *repository.CourseCacheRepository
}

type services struct {
	storage      *service.StorageService
	hub          *service.NotificationHub
	notification *service.NotificationService
	course       *service.CourseService
	learning     *service.LearningService
	catalog      *service.CatalogService
}

type controllers struct {
	learning     *controller.LearningController
	course       *controller.CourseController
	catalog      *controller.CatalogController
	notification *controller.NotificationController
	user         *controller.UserController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// currentConfig is the latest config, replaced on every hot reload.
func (a *App) currentConfig() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Config
}

func (a *App) jwtSecret() string {
	return a.currentConfig().JWT.Secret
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.Config = cfg
	a.mu.Unlock()
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		notification: repository.NewNotificationRepository(db),
		activity:     repository.NewActivityRepository(db),
		courseCache:  repository.NewCourseCacheRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, rdb *redis.Client, cfg *config.Config) *services {
	s := &services{}
	log := logger.Log

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	s.storage = storage

	client := marketplace.New(cfg.Marketplace, log)

	s.hub = service.NewNotificationHub(rdb, cfg.CORS.AllowedOrigins, log)
	s.notification = service.NewNotificationService(repos.notification, cfg.Notifications.TTL, cfg.Marketplace.FallbackMessage, log)
	s.notification.SetPublisher(s.hub)
	s.course = service.NewCourseService(client, repos.courseCache, s.notification, cfg.Cache.CourseTTL, log)
	tracker := progress.NewTracker(client, s.course, log)
	s.learning = service.NewLearningService(tracker, s.storage, repos.activity, s.notification, log)
	s.catalog = service.NewCatalogService(client, s.notification)

	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.course.SetTTL(cfg.Cache.CourseTTL)
		s.notification.SetTTL(cfg.Notifications.TTL)
		s.storage.SetTTL(cfg.Storage.PresignTTL)
		s.notification.SetFallbackMessage(cfg.Marketplace.FallbackMessage)
		controller.SetFallbackMessage(cfg.Marketplace.FallbackMessage)
	})

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		learning:     controller.NewLearningController(s.learning),
		course:       controller.NewCourseController(s.course),
		catalog:      controller.NewCatalogController(s.catalog),
		notification: controller.NewNotificationController(s.notification, s.hub),
		user:         controller.NewUserController(),
		health: controller.NewHealthController(db, map[string]controller.Pinger{
			"redis":   repos.courseCache,
			"storage": s.storage,
		}),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	a.limiter = security.NewLimiter(cfg.RateLimit)
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	go a.limiter.Run(ctx)
	go s.hub.Run(ctx)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.notification.Purge(ctx)
			}
		}
	}()

	go func() {
		file := filepath.Join("configs", "config.yaml")
		if err := configwatcher.WatchConfig(ctx, file, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb
	app.RegisterConfigCallback(logger.SetLevel)

	controller.SetFallbackMessage(cfg.Marketplace.FallbackMessage)

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, rdb, cfg)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("designhub-gateway", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.stop = cancel
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// wait for an interrupt, then give in-flight requests 5 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.stop != nil {
		a.stop()
	}
	if a.services != nil {
		a.services.hub.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tracing.Shutdown(ctx, a.tracer); err != nil {
		logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
