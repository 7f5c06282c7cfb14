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
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/studymate-api/api/swagger"
	"github.com/noah-isme/studymate-api/internal/content"
	"github.com/noah-isme/studymate-api/internal/handler"
	"github.com/noah-isme/studymate-api/internal/repository"
	"github.com/noah-isme/studymate-api/internal/service"
	"github.com/noah-isme/studymate-api/pkg/cache"
	"github.com/noah-isme/studymate-api/pkg/config"
	"github.com/noah-isme/studymate-api/pkg/database"
	"github.com/noah-isme/studymate-api/pkg/gemini"
	"github.com/noah-isme/studymate-api/pkg/jobs"
	"github.com/noah-isme/studymate-api/pkg/logger"
	"github.com/noah-isme/studymate-api/pkg/storage"
)

// @title StudyMate API
// @version 1.0.0
// @description Study planning, exam tracking and AI study assistant for students
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	library, err := content.Load(cfg.ContentLibraryPath)
	if err != nil {
		logr.Fatal("failed to load content library", zap.Error(err))
	}

	files, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare uploads directory", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			// Tips come from the content library, which may differ from the last deploy.
			if err := cacheRepo.DeleteByPattern(ctx, "dashboard:*"); err != nil {
				logr.Warn("failed to flush dashboard cache", zap.Error(err))
			}
		}
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo.Enabled())

	llm := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})
	if !llm.Configured() {
		logr.Warn("GEMINI_API_KEY not set, assistant endpoints will fail")
	}

	examRepo := repository.NewExamRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	aiResultRepo := repository.NewAIResultRepository(db)

	recorder := service.NewAIResultRecorder(aiResultRepo, metrics, logr)
	var resultQueue *jobs.Queue
	if cfg.AIResults.Enabled {
		resultQueue = jobs.NewQueue("ai-results", recorder.Handle, jobs.QueueConfig{
			Workers:    cfg.AIResults.Workers,
			MaxRetries: cfg.AIResults.Retries,
			Logger:     logr,
		})
		resultQueue.Start(ctx)
		defer resultQueue.Stop()
		recorder.Attach(resultQueue)
	}

	dashboardSvc := service.NewDashboardService(examRepo, profileRepo, library, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	studyPlanSvc := service.NewStudyPlanService(repository.NewStudyPreferenceRepository(db), metrics, validate, logr, service.StudyPlanConfig{PlanTTL: cfg.StudyPlan.PlanTTL})
	examSvc := service.NewExamService(examRepo, dashboardSvc, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, dashboardSvc, validate, logr)
	learningStyleSvc := service.NewLearningStyleService(profileRepo, library, dashboardSvc, validate, logr)
	assistantSvc := service.NewAssistantService(llm, library, recorder, metrics, validate, logr)
	documentSvc := service.NewDocumentService(files, library, llm, recorder, metrics, validate, logr, service.DocumentConfig{
		MaxFileSize:  cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		TTL:          cfg.Uploads.DocumentTTL,
	})

	sweeper, err := service.NewDocumentSweeper(documentSvc, cfg.Uploads.SweepSchedule, logr)
	if err != nil {
		logr.Fatal("failed to schedule document sweep", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	assistantHandler := handler.NewAssistantHandler(assistantSvc, nil)
	if cfg.AIResults.Enabled {
		assistantHandler = handler.NewAssistantHandler(assistantSvc, recorder)
	}

	r := newRouter(cfg, logr, routes{
		identity:  service.NewIdentityService(service.IdentityConfig{Secret: cfg.Identity.JWTSecret, Issuer: cfg.Identity.Issuer}, logr),
		metrics:   metrics,
		studyPlan: handler.NewStudyPlanHandler(studyPlanSvc),
		exams:     handler.NewExamHandler(examSvc),
		profiles:  handler.NewProfileHandler(profileSvc, learningStyleSvc),
		dashboard: handler.NewDashboardHandler(dashboardSvc),
		assistant: assistantHandler,
		documents: handler.NewDocumentHandler(documentSvc),
		system:    handler.NewMetricsHandler(metrics, readinessChecks(db, cacheRepo)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func readinessChecks(db *sqlx.DB, cacheRepo *repository.CacheRepository) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if cacheRepo.Enabled() {
		checks["cache"] = cacheRepo.Ping
	}
	return checks
}
