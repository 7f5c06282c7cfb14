package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/studymate-api/internal/handler"
	internalmiddleware "github.com/noah-isme/studymate-api/internal/middleware"
	"github.com/noah-isme/studymate-api/internal/service"
	"github.com/noah-isme/studymate-api/pkg/config"
	"github.com/noah-isme/studymate-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studymate-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studymate-api/pkg/middleware/requestid"
)

type routes struct {
	identity  *service.IdentityService
	metrics   *service.MetricsService
	studyPlan *handler.StudyPlanHandler
	exams     *handler.ExamHandler
	profiles  *handler.ProfileHandler
	dashboard *handler.DashboardHandler
	assistant *handler.AssistantHandler
	documents *handler.DocumentHandler
	system    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(h.metrics))
	r.Use(internalmiddleware.ResponseMeta())

	r.GET("/health", h.system.Health)
	r.GET("/ready", h.system.Ready)
	r.GET("/metrics", h.system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.Identity(h.identity))

	plan := api.Group("/study-plan")
	plan.GET("/preferences", h.studyPlan.GetPreferences)
	plan.PUT("/preferences", h.studyPlan.ReplacePreferences)
	plan.POST("/preferences/unavailable-dates", h.studyPlan.AddUnavailableDate)
	plan.DELETE("/preferences/unavailable-dates/:date", h.studyPlan.RemoveUnavailableDate)
	plan.PUT("/preferences/availability/:weekday", h.studyPlan.SetAvailability)
	plan.POST("/preferences/availability/:weekday/toggle", h.studyPlan.ToggleWeekday)
	plan.POST("/preferences/subjects", h.studyPlan.AddSubject)
	plan.DELETE("/preferences/subjects/:name", h.studyPlan.RemoveSubject)
	plan.PUT("/preferences/duration", h.studyPlan.SetDuration)
	plan.POST("/generate", h.studyPlan.Generate)
	plan.GET("/events", h.studyPlan.Events)
	plan.GET("/calendar", h.studyPlan.Calendar)
	plan.GET("/export", h.studyPlan.Export)

	exams := api.Group("/exams")
	exams.GET("", h.exams.List)
	exams.POST("", h.exams.Create)
	exams.PATCH("/:id/progress", h.exams.UpdateProgress)
	exams.DELETE("/:id", h.exams.Delete)

	api.GET("/profile", h.profiles.Get)
	api.PUT("/profile", h.profiles.Update)
	api.GET("/learning-style/questions", h.profiles.Questions)
	api.POST("/learning-style/assessment", h.profiles.SubmitAssessment)

	api.GET("/dashboard", h.dashboard.Summary)

	api.POST("/ai/generate", h.assistant.Generate)
	api.GET("/ai/results", h.assistant.History)

	docs := api.Group("/documents")
	docs.POST("", h.documents.Upload)
	docs.GET("", h.documents.List)
	docs.POST("/:id/questions", h.documents.Ask)
	docs.POST("/:id/tests", h.documents.GenerateTest)
	docs.GET("/tests/:id", h.documents.Test)

	api.GET("/system/metrics", h.system.System)

	return r
}
