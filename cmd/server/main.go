package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/paydash/backend/docs"
	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/cache"
	"github.com/paydash/backend/internal/config"
	"github.com/paydash/backend/internal/database"
	"github.com/paydash/backend/internal/handlers"
	"github.com/paydash/backend/internal/logger"
	"github.com/paydash/backend/internal/pricing"
	"github.com/paydash/backend/internal/services"
	"github.com/paydash/backend/internal/store"
)

// @title Paydash Merchant API
// @version 1.0
// @description Merchant dashboard API: balances, API keys, payment modules and wallet operations
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer zl.Sync()

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	if cfg.IsProduction() {
		docs.SwaggerInfo.Schemes = []string{"https"}
	}

	ctx := context.Background()

	db, err := database.OpenPostgres(ctx, cfg.Database, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	st := store.New(db)

	checks := map[string]handlers.Pinger{"postgres": st}

	var shared cache.Cache
	if redisClient := database.OpenRedis(ctx, cfg.Redis, zl); redisClient != nil {
		defer redisClient.Close()
		rc := cache.NewRedisCache(redisClient, "paydash")
		checks["redis"] = rc
		shared = rc
	} else {
		zl.Warn("Redis unavailable, using in-process cache")
		shared = cache.NewMemoryCache(cache.SystemClock{})
	}

	auditLog := audit.NewLogger(zl)

	priceSource := pricing.NewClient(cfg.Pricing, &http.Client{Timeout: cfg.Pricing.Timeout})
	prices := pricing.NewService(pricing.Options{
		Asset:            cfg.Pricing.Asset,
		RefreshThreshold: cfg.Pricing.RefreshThreshold,
	}, priceSource, st, shared, zl)

	authService := services.NewAuthService(st, cfg.JWT, cfg.Argon2, zl)
	apiKeyService := services.NewAPIKeyService(st, cfg.APIKeys, auditLog, zl)
	orgService := services.NewOrganizationService(st, cfg.Pricing.Asset, auditLog, zl)
	balanceService := services.NewBalanceService(st, prices, cfg.Pricing.Currency, cache.SystemClock{}, zl)
	moduleService := services.NewModuleService(st, auditLog, zl)
	snippetService := services.NewSnippetService(cfg.Widget)
	transactionService := services.NewTransactionService(st, auditLog, zl)
	iso20022Service := services.NewISO20022Service(st)
	walletService := services.NewWalletService(st, prices, shared, cfg.Pricing.Asset, cfg.Pricing.Currency, auditLog, zl)

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         zl,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		WidgetDir:      cfg.Widget.AssetsDir,

		Tokens: authService,
		Keys:   apiKeyService,
		Authz:  orgService,

		Auth:          handlers.NewAuthHandler(authService, zl),
		Organizations: handlers.NewOrganizationHandler(orgService, zl),
		Balances:      handlers.NewBalanceHandler(balanceService, zl),
		APIKeys:       handlers.NewAPIKeyHandler(apiKeyService, zl),
		Modules:       handlers.NewModuleHandler(moduleService, snippetService, zl),
		Transactions:  handlers.NewTransactionHandler(transactionService, iso20022Service, zl),
		Wallet:        handlers.NewWalletHandler(walletService, zl),
		Health:        handlers.NewHealthHandler(checks, zl),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		zl.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	zl.Info("Server stopped")
}
