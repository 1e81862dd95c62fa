package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/supplydesk/backend/internal/config"
	"github.com/supplydesk/backend/internal/http/handlers"
	"github.com/supplydesk/backend/internal/http/middleware"
	"github.com/supplydesk/backend/internal/service"

	_ "github.com/supplydesk/backend/docs"
)

func Router(cfg config.Config, svc *service.AnalysisService, source handlers.Pinger, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Service:   svc,
		Source:    source,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api/analysis")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		api.GET("", h.Analysis)
		api.GET("/export", h.AnalysisExport)
		api.POST("/categorize", h.Categorize)
		api.POST("/triage", h.Triage)
		api.GET("/runs/latest", h.RunsLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/runs", h.RunsCreate)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
