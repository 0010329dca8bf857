package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ismart-schedule-api/api/swagger"
	"github.com/noah-isme/ismart-schedule-api/internal/handler"
	"github.com/noah-isme/ismart-schedule-api/internal/planner"
	"github.com/noah-isme/ismart-schedule-api/internal/repository"
	"github.com/noah-isme/ismart-schedule-api/internal/service"
	"github.com/noah-isme/ismart-schedule-api/pkg/cache"
	"github.com/noah-isme/ismart-schedule-api/pkg/config"
	"github.com/noah-isme/ismart-schedule-api/pkg/database"
	"github.com/noah-isme/ismart-schedule-api/pkg/jobs"
	"github.com/noah-isme/ismart-schedule-api/pkg/logger"
	"github.com/noah-isme/ismart-schedule-api/pkg/storage"
)

// @title iSmartSchedule API
// @version 1.0.0
// @description Personal timetable planner over 30 minute slots.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, day view cache disabled", zap.Error(err))
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	activityRepo := repository.NewActivityRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	plannerSvc := service.NewPlannerService(
		planner.NewScheduler(logr.Named("planner")),
		activityRepo,
		timetableRepo,
		db,
		cacheSvc,
		metrics,
		service.PlannerOptions{
			MaxRangeDays:      cfg.Planner.MaxRangeDays,
			MaxTasks:          cfg.Planner.MaxTasks,
			PersistAsync:      cfg.Planner.PersistAsync,
			DefaultWorkStart:  cfg.Planner.DefaultWorkStart,
			DefaultWorkHours:  cfg.Planner.DefaultWorkHours,
			DefaultSleepHours: cfg.Planner.DefaultSleepHours,
		},
		validate,
		logr,
	)

	persistQueue := newPersistQueue(cfg, plannerSvc, metrics, logr)
	if persistQueue != nil {
		persistQueue.Start(context.Background())
		plannerSvc.UseQueue(persistQueue)
	}

	exportSvc := newExportService(cfg, timetableRepo, metrics, logr)
	go exportSvc.RunCleanup(ctx, cfg.Export.CleanupInterval)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(cacheRepo.Ping)
	}

	router := newRouter(routeDeps{
		cfg:        cfg,
		logger:     logr,
		metrics:    metrics,
		auth:       service.NewAuthService(cfg.JWT.Secret),
		planner:    handler.NewPlannerHandler(plannerSvc),
		timetable:  handler.NewTimetableHandler(service.NewTimetableService(timetableRepo, cacheSvc, metrics, validate, logr), exportSvc),
		activities: handler.NewActivityHandler(service.NewActivityService(activityRepo, validate, logr)),
		probes:     handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	if persistQueue != nil {
		if err := persistQueue.Wait(shutdownCtx); err != nil {
			logr.Warn("pending timetable writes abandoned", zap.Error(err))
		}
		persistQueue.Stop()
	}
	return nil
}

// newPersistQueue returns nil when plans are saved synchronously.
func newPersistQueue(cfg *config.Config, plannerSvc *service.PlannerService, metrics *service.MetricsService, logr *zap.Logger) *jobs.Queue {
	if !cfg.Planner.PersistAsync {
		return nil
	}
	return jobs.NewQueue("plan-persist", plannerSvc.PersistJob, jobs.QueueConfig{
		Workers:    cfg.Planner.Workers,
		MaxRetries: cfg.Planner.WorkerRetries,
		RetryDelay: time.Second,
		Logger:     logr,
		OnResult: func(_ jobs.Job, err error) {
			metrics.RecordPersistJob(err)
		},
	})
}

func newExportService(cfg *config.Config, repo *repository.TimetableRepository, metrics *service.MetricsService, logr *zap.Logger) *service.ExportService {
	opts := service.ExportOptions{
		Title:     cfg.Export.Title,
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Export.SignedURLTTL,
	}
	files, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil || cfg.Export.SignedURLSecret == "" {
		logr.Warn("export links disabled", zap.String("dir", cfg.Export.StorageDir), zap.Error(err))
		return service.NewExportService(repo, nil, nil, opts, metrics, logr, nil, nil)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
	return service.NewExportService(repo, files, signer, opts, metrics, logr, nil, nil)
}
