package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edulane/tutor-booking-api/api/swagger"
	"github.com/edulane/tutor-booking-api/internal/handler"
	internalmiddleware "github.com/edulane/tutor-booking-api/internal/middleware"
	"github.com/edulane/tutor-booking-api/internal/repository"
	"github.com/edulane/tutor-booking-api/internal/service"
	"github.com/edulane/tutor-booking-api/pkg/cache"
	"github.com/edulane/tutor-booking-api/pkg/config"
	"github.com/edulane/tutor-booking-api/pkg/database"
	"github.com/edulane/tutor-booking-api/pkg/jobs"
	"github.com/edulane/tutor-booking-api/pkg/logger"
	corsmiddleware "github.com/edulane/tutor-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edulane/tutor-booking-api/pkg/middleware/requestid"
)

// @title Tutor Booking API
// @version 1.0.0
// @description Availability and booking engine for a tutoring school
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Availability.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, availability caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Availability.CacheTTL, logr, true)
		}
	}

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	lessonRepo := repository.NewLessonRepository(db)

	ledgerSvc := service.NewLedgerService(subscriptionRepo, logr)
	availabilitySvc := service.NewAvailabilityService(teacherRepo, studentRepo, subscriptionRepo, lessonRepo, cacheSvc, cfg.Availability.CacheTTL, logr)
	bookingSvc := service.NewBookingService(lessonRepo, teacherRepo, studentRepo, ledgerSvc, cacheSvc, metrics, validator.New(), cfg.Booking.RefundNoticeHours, time.Local, logr)
	completionSvc := service.NewCompletionService(lessonRepo, time.Local, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, subscriptionRepo, cacheSvc, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, studentRepo, ledgerSvc, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(lessonRepo, teacherRepo, studentRepo, logr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepQueue := jobs.NewQueue("completion-sweep", func(ctx context.Context, job jobs.Job) error {
		_, err := completionSvc.MarkElapsed(ctx)
		return err
	}, jobs.QueueConfig{Workers: cfg.Booking.SweepWorkers, Logger: logr})
	sweepQueue.Start(ctx)
	defer sweepQueue.Stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Booking.CompletionSweepCron, func() {
		if err := sweepQueue.Enqueue(jobs.Job{Type: "completion-sweep"}); err != nil {
			logr.Warn("failed to enqueue completion sweep", zap.Error(err))
		}
	}); err != nil {
		logr.Sugar().Fatalw("invalid completion sweep schedule", "cron", cfg.Booking.CompletionSweepCron, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Availability:  handler.NewAvailabilityHandler(availabilitySvc),
		Lessons:       handler.NewLessonHandler(bookingSvc),
		Teachers:      handler.NewTeacherHandler(teacherSvc, exportSvc),
		Students:      handler.NewStudentHandler(studentSvc, subscriptionSvc, ledgerSvc),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
