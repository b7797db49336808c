// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"essenza/internal/domain/auth"
	"essenza/internal/domain/batch"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/lifecycle"
	"essenza/internal/domain/quality"
	"essenza/internal/infrastructure/http/v1/handlers"
	"essenza/internal/infrastructure/http/v1/middleware"
	"essenza/pkg/logger"
)

// RouterConfig wires the API surface to the domain services.
type RouterConfig struct {
	Logger *logger.Logger

	// JWT signs and validates access tokens
	JWT *auth.JWTService

	// AuthUsers are the configured API credentials
	AuthUsers []handlers.Credential

	Documents *document.Service
	Engine    *lifecycle.Engine
	Quality   *quality.Service
	Batch     *batch.Orchestrator
	Ledger    *ledger.Service

	// History is nil when no transition audit is wired (memory storage)
	History handlers.TransitionHistorian

	// Ping is nil when no database backs the deployment
	Ping func(c *gin.Context) error
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Ping)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	apiV1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.JWT, cfg.AuthUsers)
		apiV1.POST("/auth/login", authHandler.Login)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWT))

		documentHandler := handlers.NewDocumentHandler(base, cfg.Documents, cfg.Engine, cfg.History)
		docs := protected.Group("/documents")
		{
			docs.POST("", documentHandler.Create)
			docs.GET("", documentHandler.List)
			docs.GET("/:id", documentHandler.Get)
			docs.PUT("/:id", documentHandler.Update)
			docs.POST("/:id/transition", documentHandler.Transition)
			docs.POST("/:id/reverse", documentHandler.Reverse)
			docs.GET("/:id/transitions", documentHandler.Transitions)
		}

		qualityHandler := handlers.NewQualityHandler(base, cfg.Quality)
		checks := protected.Group("/quality-checks")
		{
			checks.POST("", qualityHandler.Create)
			checks.GET("", qualityHandler.List)
			checks.GET("/:id", qualityHandler.Get)
			checks.POST("/:id/rework", qualityHandler.Rework)
		}

		batchHandler := handlers.NewBatchHandler(base, cfg.Batch)
		protected.POST("/batches", batchHandler.Execute)

		stockHandler := handlers.NewStockHandler(base, cfg.Ledger)
		stock := protected.Group("/stock")
		{
			stock.GET("/units", stockHandler.List)
			stock.GET("/units/:id", stockHandler.Get)
			stock.PUT("/units", middleware.RequireRole("admin"), stockHandler.Put)
			stock.GET("/movements", stockHandler.ListMovements)
			stock.GET("/movements/:recorderId", stockHandler.Movements)
		}
	}

	return router
}
