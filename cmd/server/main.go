// Package main is the entry point for the Essenza API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"essenza/internal/core/tx"
	"essenza/internal/domain/auth"
	"essenza/internal/domain/batch"
	"essenza/internal/domain/document"
	"essenza/internal/domain/ledger"
	"essenza/internal/domain/lifecycle"
	"essenza/internal/domain/quality"
	v1 "essenza/internal/infrastructure/http/v1"
	"essenza/internal/infrastructure/http/v1/handlers"
	"essenza/internal/infrastructure/storage/memory"
	"essenza/internal/infrastructure/storage/postgres"
	"essenza/pkg/logger"
	"essenza/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting essenza server")

	var (
		ledgerStore ledger.Store
		docStore    document.Store
		checkStore  quality.Store
		numbers     document.Numerator
		txm         tx.Manager
		auditor     lifecycle.Auditor
		history     handlers.TransitionHistorian
		ping        func(c *gin.Context) error
		cleanup     func()
	)

	switch getEnv("STORAGE", "postgres") {
	case "memory":
		log.Info("using in-memory storage")
		ledgerStore = memory.NewLedgerStore()
		docStore = memory.NewDocumentStore()
		checkStore = memory.NewCheckStore()
		numbers = memory.NewNumerator()
		txm = tx.Noop{}
		cleanup = func() {}

	default:
		dsn := mustEnv("DATABASE_URL")
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		log.Info("database connection established")

		txManager := postgres.NewTxManager(pool)
		ledgerStore = postgres.NewLedgerRepo(txManager)
		docRepo := postgres.NewDocumentRepo(txManager)
		docStore = docRepo
		checkStore = postgres.NewCheckRepo(txManager, docRepo)
		numbers = numerator.New(pool.Unwrap())
		txm = txManager

		audit, err := postgres.NewTransitionAudit(txManager)
		if err != nil {
			log.Fatalw("failed to initialize transition audit", "error", err)
		}
		auditor = audit
		history = audit

		ping = func(c *gin.Context) error {
			return pool.Unwrap().Ping(c.Request.Context())
		}
		cleanup = pool.Close
	}
	defer cleanup()

	// --- Domain services ---
	ledgerService := ledger.NewService(ledgerStore)
	documentService := document.NewService(docStore, numbers)
	engine := lifecycle.NewEngine(docStore, ledgerService, txm, numbers, auditor)
	orchestrator := batch.NewOrchestrator(ledgerService, docStore, numbers)

	policy := quality.NewPolicy()
	if raw := os.Getenv("DEFECT_THRESHOLD"); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil {
			log.Fatalw("invalid DEFECT_THRESHOLD", "value", raw, "error", err)
		}
		policy = quality.NewPolicyWithThreshold(threshold)
	}
	if expr := os.Getenv("DISPOSITION_EXPRESSION"); expr != "" {
		if err := policy.WithExpression(expr); err != nil {
			log.Fatalw("invalid DISPOSITION_EXPRESSION", "error", err)
		}
		log.Info("custom disposition expression loaded")
	}
	qualityService := quality.NewService(checkStore, numbers, policy, ledgerService.Reader())

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(
		getEnv("JWT_SECRET", "dev-secret-change-in-production"),
	))
	users := []handlers.Credential{
		{
			UserID:   getEnv("ADMIN_USER_ID", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@essenza.local"),
			Password: mustEnv("ADMIN_PASSWORD"),
			Roles:    []string{"admin"},
		},
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:    log,
		JWT:       jwtService,
		AuthUsers: users,
		Documents: documentService,
		Engine:    engine,
		Quality:   qualityService,
		Batch:     orchestrator,
		Ledger:    ledgerService,
		History:   history,
		Ping:      ping,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
