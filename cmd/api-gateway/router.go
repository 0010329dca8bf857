package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ismart-schedule-api/internal/handler"
	internalmiddleware "github.com/noah-isme/ismart-schedule-api/internal/middleware"
	"github.com/noah-isme/ismart-schedule-api/internal/service"
	"github.com/noah-isme/ismart-schedule-api/pkg/config"
	"github.com/noah-isme/ismart-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ismart-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ismart-schedule-api/pkg/middleware/requestid"
)

// Token scopes guarding write routes.
const (
	scopePlansWrite      = "plans:write"
	scopeTimetableWrite  = "timetable:write"
	scopeActivitiesWrite = "activities:write"
)

type routeDeps struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *service.MetricsService
	auth       internalmiddleware.TokenValidator
	planner    *handler.PlannerHandler
	timetable  *handler.TimetableHandler
	activities *handler.ActivityHandler
	probes     *handler.MetricsHandler
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(d.metrics, "/metrics"))
	r.Use(internalmiddleware.ResponseMeta())

	r.GET("/health", d.probes.Health)
	r.GET("/ready", d.probes.Ready)
	r.GET("/metrics", d.probes.Prometheus)
	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(d.cfg.APIPrefix, "/")
	api := r.Group(prefix)

	guard := func(scope string) []gin.HandlerFunc {
		if !d.cfg.JWT.Enabled || d.auth == nil {
			return nil
		}
		return []gin.HandlerFunc{internalmiddleware.JWT(d.auth), internalmiddleware.RequireScope(scope)}
	}
	with := func(h gin.HandlerFunc, scope string) []gin.HandlerFunc {
		return append(guard(scope), h)
	}

	api.POST("/plans/generate", with(d.planner.Generate, scopePlansWrite)...)

	api.GET("/timetable/dates", d.timetable.Dates)
	api.GET("/timetable/export", d.timetable.Export)
	api.POST("/timetable/exports", with(d.timetable.CreateExportLink, scopeTimetableWrite)...)
	api.GET("/timetable/:date", d.timetable.Day)
	api.DELETE("/timetable", with(d.timetable.DeleteRange, scopeTimetableWrite)...)
	api.GET("/exports/:token", d.timetable.Download)

	api.GET("/activities", d.activities.List)
	api.POST("/activities", with(d.activities.Create, scopeActivitiesWrite)...)

	return r
}
