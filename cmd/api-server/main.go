package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/meetwise/availability-api/api/swagger"
	"github.com/meetwise/availability-api/internal/handler"
	"github.com/meetwise/availability-api/internal/middleware"
	"github.com/meetwise/availability-api/internal/repository"
	"github.com/meetwise/availability-api/internal/service"
	"github.com/meetwise/availability-api/pkg/cache"
	"github.com/meetwise/availability-api/pkg/config"
	"github.com/meetwise/availability-api/pkg/database"
	"github.com/meetwise/availability-api/pkg/jobs"
	"github.com/meetwise/availability-api/pkg/logger"
	corsmiddleware "github.com/meetwise/availability-api/pkg/middleware/cors"
	reqidmiddleware "github.com/meetwise/availability-api/pkg/middleware/requestid"
)

// @title Availability Resolution API
// @version 0.1.0
// @description Resolves common free time slots across participants
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The snapshot falls back to Postgres when Redis is unavailable.
		logr.Sugar().Warnw("redis unavailable, running without snapshot cache", "error", err)
		redisClient = nil
	}

	participantRepo := repository.NewParticipantRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Snapshot.TTL, logr)
	snapshotSvc := service.NewSnapshotService(participantRepo, availabilityRepo, cacheSvc, metricsSvc, cfg.Snapshot.TTL, logr)

	queue := jobs.NewQueue("snapshot", snapshotSvc.ProcessJob, jobs.QueueConfig{
		Workers:    cfg.Snapshot.WorkerConcurrency,
		MaxRetries: cfg.Snapshot.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(context.Background())
	defer queue.Stop()
	metricsSvc.RegisterQueueDepth("snapshot", queue.Depth)
	snapshotSvc.UseQueue(queue)
	snapshotSvc.ScheduleRebuild()

	validate := validator.New()
	participantSvc := service.NewParticipantService(participantRepo, availabilityRepo, snapshotSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(snapshotSvc, cfg.Engine.SlotGranularity, cfg.Engine.ResolverWorkers, metricsSvc, logr)
	exportSvc := service.NewExportService(nil, nil)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc, exportSvc)
	participantHandler := handler.NewParticipantHandler(participantSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/availability/resolve", availabilityHandler.Resolve)
	if cfg.Exports.Enabled {
		api.POST("/availability/export", availabilityHandler.Export)
	}
	api.GET("/participants", participantHandler.List)
	api.GET("/participants/:id", participantHandler.Get)
	api.GET("/participants/:id/availability", participantHandler.GetWeeklyAvailability)
	api.GET("/participants/:id/schedule", participantHandler.GetBusyIntervals)

	admin := api.Group("", middleware.AdminAuth(cfg.Auth.Secret))
	admin.POST("/participants", participantHandler.Create)
	admin.PUT("/participants/:id", participantHandler.Update)
	admin.DELETE("/participants/:id", participantHandler.Delete)
	admin.PUT("/participants/:id/availability", participantHandler.ReplaceWeeklyAvailability)
	admin.PUT("/participants/:id/schedule", participantHandler.ReplaceBusyIntervals)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
