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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/velo-register/internal/application/service"
	"github.com/sangkips/velo-register/internal/config"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/internal/infrastructure/backoffice"
	"github.com/sangkips/velo-register/internal/infrastructure/cache"
	"github.com/sangkips/velo-register/internal/infrastructure/database"
	"github.com/sangkips/velo-register/internal/infrastructure/documents"
	"github.com/sangkips/velo-register/internal/infrastructure/repository"
	"github.com/sangkips/velo-register/internal/infrastructure/session"
	"github.com/sangkips/velo-register/internal/presentation/http/handler"
	"github.com/sangkips/velo-register/internal/presentation/http/middleware"
	"github.com/sangkips/velo-register/internal/presentation/http/routes"
	"github.com/sangkips/velo-register/pkg/logger"
	"github.com/sangkips/velo-register/pkg/printer"
	"github.com/sangkips/velo-register/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The database holds the catalog snapshot, the checkout journal and
	// idempotency keys. The register still sells without it.
	var (
		catalogRepo     domainRepo.CatalogRepository
		checkoutRepo    domainRepo.CheckoutRepository
		idempotencyRepo domainRepo.IdempotencyRepository
	)
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, zl)
	if err != nil {
		zl.Warn("running without a database", zap.Error(err))
	} else if err := database.AutoMigrate(db, zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	} else {
		catalogRepo = repository.NewCatalogRepository(db)
		checkoutRepo = repository.NewCheckoutRepository(db)
		idempotencyRepo = repository.NewIdempotencyRepository(db)
	}

	var cartStore domainRepo.CartStore = cache.NewMemoryCartStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, carts kept in memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			cartStore = cache.NewRedisCartStore(rdb, cfg.Redis.CartTTL)
			zl.Info("carts stored in redis", zap.String("addr", cfg.Redis.Addr))
		}
		defer func() { _ = rdb.Close() }()
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Leeway)
	credentials := session.NewCredentialStore(jwtManager)
	gateway := backoffice.NewClient(cfg.BackOffice, nil, zl)

	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		zl.Warn("failed to initialize printer, scans will be silent", zap.Error(err))
		thermalPrinter = nil
	}

	// Built whatever the default so a checkout request can still ask for
	// its documents.
	var sink service.DocumentSink
	if cfg.Register.DocumentDir != "" {
		s, err := documents.NewOSSink(cfg.Register.DocumentDir)
		if err != nil {
			zl.Warn("document directory unusable, downloads will be reported as failed",
				zap.String("dir", cfg.Register.DocumentDir), zap.Error(err))
		} else {
			sink = s
		}
	}

	catalogService := service.NewCatalogService(gateway, catalogRepo, credentials, service.NewAcknowledger(thermalPrinter), zl)
	cartService := service.NewCartService(catalogService, cartStore, cfg.Register.DefaultStore, zl)
	checkoutService := service.NewCheckoutService(cartService, gateway, credentials, sink, checkoutRepo,
		cfg.Register.SupportsLocalDownload, zl)
	clientService := service.NewClientService(gateway, credentials, zl)

	if err := catalogService.Load(ctx); err != nil {
		zl.Warn("failed to load catalog snapshot", zap.Error(err))
	}
	go catalogService.Run(ctx, cfg.Register.CatalogRefresh)

	if idempotencyRepo != nil {
		go purgeIdempotencyKeys(ctx, idempotencyRepo, zl)
	}

	rateLimiter := middleware.NewOperatorRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	go rateLimiter.Run(ctx.Done(), 5*time.Minute)

	handlers := &routes.Handlers{
		Session:  handler.NewSessionHandler(credentials),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Cart:     handler.NewCartHandler(cartService),
		Client:   handler.NewClientHandler(clientService, cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Health: handler.NewHealthHandler(cfg.App.Name, catalogService,
			func() service.PrinterStatus { return service.StatusOf(thermalPrinter, cfg.Printer.Type) },
			gateway.BreakerState),
	}

	router := routes.Setup(handlers, &routes.Deps{
		Credentials:     credentials,
		RateLimiter:     rateLimiter,
		Cfg:             cfg,
		Logger:          zl,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("starting register",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("default_store", cfg.Register.DefaultStore.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	// running checkouts are detached from requests; give them time to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zl *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				zl.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Debug("purged idempotency keys", zap.Int64("count", n))
			}
		}
	}
}
