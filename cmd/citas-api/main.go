package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/citas-api/api/swagger"
	"github.com/noah-isme/citas-api/internal/handler"
	"github.com/noah-isme/citas-api/internal/middleware"
	"github.com/noah-isme/citas-api/internal/repository"
	"github.com/noah-isme/citas-api/internal/service"
	"github.com/noah-isme/citas-api/pkg/cache"
	"github.com/noah-isme/citas-api/pkg/config"
	"github.com/noah-isme/citas-api/pkg/database"
	"github.com/noah-isme/citas-api/pkg/events"
	"github.com/noah-isme/citas-api/pkg/jobs"
	"github.com/noah-isme/citas-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/citas-api/pkg/middleware/cors"
	"github.com/noah-isme/citas-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/citas-api/pkg/middleware/requestid"
)

// @title Citas API
// @version 1.0.0
// @description Availability and booking engine for university counselling appointments.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Notify.Driver == config.NotifyDriverRedis {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	publisher, err := newPublisher(cfg.Notify, redisClient)
	if err != nil {
		logr.Fatal("failed to init notification publisher", zap.Error(err))
	}
	defer publisher.Close()

	var notifier *service.NotificationService
	queue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		return notifier.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.Retries,
		Logger:     logr,
	})
	notifier = service.NewNotificationService(queue, publisher, metrics, logr)
	queue.Start(ctx)

	store := repository.NewStore(db)
	availabilitySvc := service.NewAvailabilityService(repository.NewAvailabilityRepository(db), cacheSvc, validate, logr, service.AvailabilityConfig{
		BulkMaxDays: cfg.Booking.BulkMaxDays,
		CacheTTL:    cfg.Cache.TTL,
	})
	bookingSvc := service.NewBookingService(store, notifier, metrics, validate, logr)
	calendarSvc := service.NewCalendarService(store, logr, service.CalendarConfig{
		SlotMinutes: cfg.Booking.DefaultAppointmentMinutes,
		StepMinutes: cfg.Booking.SlotStepMinutes,
	})
	exportSvc := service.NewExportService(bookingSvc, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	deps := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Appointments: handler.NewAppointmentHandler(bookingSvc, exportSvc, cfg.Booking.DefaultAppointmentMinutes),
		Availability: handler.NewAvailabilityHandler(availabilitySvc),
		Calendar:     handler.NewCalendarHandler(calendarSvc),
		Tokens:       authSvc,
		Throttle:     ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware(),
	}.Register(r, cfg.APIPrefix)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	queue.Stop(shutdownCtx)
}

func newPublisher(cfg config.NotifyConfig, client *redis.Client) (events.Publisher, error) {
	switch cfg.Driver {
	case config.NotifyDriverKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.NotifyDriverRedis:
		if client == nil {
			return nil, errors.New("redis notify driver requires a reachable redis")
		}
		return events.NewRedisPublisher(client, cfg.Channel), nil
	default:
		return events.NopPublisher{}, nil
	}
}
