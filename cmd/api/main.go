package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/application/service"
	"github.com/sangkips/quickbill-api/internal/config"
	contract "github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/infrastructure/database"
	"github.com/sangkips/quickbill-api/internal/infrastructure/gate"
	"github.com/sangkips/quickbill-api/internal/infrastructure/repository"
	"github.com/sangkips/quickbill-api/internal/presentation/http/handler"
	"github.com/sangkips/quickbill-api/internal/presentation/http/middleware"
	"github.com/sangkips/quickbill-api/internal/presentation/http/routes"
	"github.com/sangkips/quickbill-api/pkg/artifact"
	"github.com/sangkips/quickbill-api/pkg/billing"
	"github.com/sangkips/quickbill-api/pkg/cache"
	"github.com/sangkips/quickbill-api/pkg/htmlview"
	"github.com/sangkips/quickbill-api/pkg/logger"
	"github.com/sangkips/quickbill-api/pkg/oauth"
	"github.com/sangkips/quickbill-api/pkg/pdfexport"
	"github.com/sangkips/quickbill-api/pkg/utils"
	"go.uber.org/zap"
)

const housekeepingInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	billingProvider := billing.NewProviderFromConfig(billing.Config{
		SecretKey:          cfg.Billing.StripeSecretKey,
		ProductName:        cfg.Billing.ProductName,
		ProductDescription: cfg.Billing.ProductDesc,
		PriceCents:         cfg.Billing.PriceCents,
		Currency:           cfg.Billing.Currency,
	}, zapLogger)

	anonymousCounts := cache.NewTTLCache[string, int64]()
	gateService := gate.New(gate.Deps{
		JWT:             jwtManager,
		Users:           userRepo,
		Invoices:        invoiceRepo,
		Subscriptions:   subscriptionRepo,
		Billing:         billingProvider,
		AnonymousCounts: anonymousCounts,
		Policy: contract.Policy{
			AnonymousLimit: cfg.Gate.AnonymousLimit,
			FreeLimit:      cfg.Gate.FreeLimit,
		},
		AnonymousTTL: cfg.Gate.AnonymousTTL,
		Logger:       zapLogger,
	})

	google := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize artifact store
	store, err := artifact.NewStoreFromConfig(artifact.Config{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		S3: artifact.S3Options{
			Bucket:   cfg.Storage.S3Bucket,
			Region:   cfg.Storage.S3Region,
			Endpoint: cfg.Storage.S3Endpoint,
			Prefix:   cfg.Storage.S3Prefix,
		},
	})
	if err != nil {
		zapLogger.Warn("failed to initialize artifact store, exports will not be kept", zap.Error(err))
		store = artifact.NewNullStore()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, google, zapLogger)
	invoiceService := service.NewInvoiceService(invoiceRepo, userRepo, zapLogger)
	documentService := service.NewDocumentService(invoiceRepo)
	exportService := service.NewExportService(
		documentService,
		pdfexport.NewExporter(pdfexport.Options{MaxPages: cfg.Export.MaxPages, Logger: zapLogger}),
		store,
		cfg.Export.Timeout,
		zapLogger,
	)
	billingService := service.NewBillingService(
		billingProvider,
		subscriptionRepo,
		userRepo,
		gateService,
		cfg.Billing.DefaultReturnURL,
		zapLogger,
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService, google, cfg.App.Env == "production"),
		Account: handler.NewAccountHandler(authService),
		Catalog: handler.NewCatalogHandler(),
		Invoice: handler.NewInvoiceHandler(invoiceService, documentService, htmlview.NewRenderer()),
		Export:  handler.NewExportHandler(exportService),
		Billing: handler.NewBillingHandler(billingService),
	}

	rateLimiter := middleware.NewIdentityRateLimiter(
		middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Gate:            gateService,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Logger:          zapLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go housekeeping(ctx, zapLogger, anonymousCounts, idempotencyRepo)

	// Get port from environment or use default
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
		zapLogger.Info("starting server",
			zap.String("app", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.Bool("billing_enabled", billingProvider.Enabled()),
			zap.String("storage", store.Driver()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
}

type expiredKeyDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// housekeeping drops expired anonymous counters and idempotency keys.
func housekeeping(ctx context.Context, log *zap.Logger, counts *cache.TTLCache[string, int64], keys expiredKeyDeleter) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept := counts.Sweep()
			deleted, err := keys.DeleteExpired(ctx)
			if err != nil {
				log.Warn("failed to delete expired idempotency keys", zap.Error(err))
			}
			log.Debug("housekeeping done", zap.Int("anonymous_counters", swept), zap.Int64("idempotency_keys", deleted))
		}
	}
}
