package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/fitcoach/backend/docs"
	adminapp "github.com/fitcoach/backend/internal/application/admin"
	billingapp "github.com/fitcoach/backend/internal/application/billing"
	blogapp "github.com/fitcoach/backend/internal/application/blog"
	catalogapp "github.com/fitcoach/backend/internal/application/catalog"
	checkoutapp "github.com/fitcoach/backend/internal/application/checkout"
	couponapp "github.com/fitcoach/backend/internal/application/coupon"
	prospectapp "github.com/fitcoach/backend/internal/application/prospect"
	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/cache"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
	"github.com/fitcoach/backend/internal/infrastructure/persistence"
	"github.com/fitcoach/backend/internal/infrastructure/receipt"
	"github.com/fitcoach/backend/internal/infrastructure/storage"
	"github.com/fitcoach/backend/internal/infrastructure/telemetry"
	"github.com/fitcoach/backend/internal/interfaces/http/handler"
	"github.com/fitcoach/backend/internal/interfaces/http/middleware"
	"github.com/fitcoach/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			FitCoach Backend API
//	@version		1.0
//	@description	Checkout, catalog, lead capture and content API for the coaching site

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /admin/login. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fitcoach:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.RequireServerSecrets(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Telemetry providers are created with the bootstrap logger; the final
	// logger tees into the OTLP log bridge when it is enabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return err
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return err
	}

	log, err := logger.New(logCfg,
		logger.WithCore(loggerProvider.Core(logger.ParseLevel(cfg.Log.Level))),
		logger.WithFields(zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Env)),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting FitCoach backend",
		zap.String("port", cfg.App.Port),
		zap.Bool("stripe_test_mode", cfg.Stripe.IsTestMode()),
	)

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		return err
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Logger provider shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracing(cfg.Database.DBName, cfg.Telemetry.DBSlowQueryThresh, log).Register(db.DB); err != nil {
			return err
		}
	}
	log.Info("Database connected")

	// Redis is optional: every store it backs has an in-memory fallback
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}
	var cacheClient redis.UniversalClient
	if redisClient != nil {
		cacheClient = redisClient
	}
	factory := cache.NewFactory(cacheClient, cache.WithLogger(log))

	paymentMetrics, err := telemetry.NewPaymentMetrics(meterProvider.Meter("fitcoach/payments"))
	if err != nil {
		return err
	}
	var httpMetrics *telemetry.HTTPMetrics
	if meterProvider.IsEnabled() {
		if httpMetrics, err = telemetry.NewHTTPMetrics(meterProvider.Meter("fitcoach/http")); err != nil {
			return err
		}
	}

	stripeAdapter, err := billing.NewStripeAdapter(billing.NewStripeConfig(cfg.Stripe), log)
	if err != nil {
		return err
	}
	priceLookup := billing.NewPriceIntervalLookup(stripeAdapter, cfg.Stripe.PriceLookupTTL)

	normalizer := checkout.NewNormalizer(
		checkout.WithCurrency(cfg.Stripe.DefaultCurrency),
		checkout.WithMixedCartPolicy(checkout.MixedCartPolicy(cfg.Checkout.MixedCartPolicy)),
		checkout.WithIntervalLookup(checkout.ChainedIntervalLookup{
			staticIntervals(cfg.Stripe),
			priceLookup,
		}),
	)
	uiMode, err := checkoutapp.ParseUIMode(cfg.Checkout.PaymentIntentMode, checkoutapp.UIModeElements)
	if err != nil {
		return fmt.Errorf("invalid checkout.payment_intent_mode: %w", err)
	}
	checkoutService := checkoutapp.NewService(normalizer, stripeAdapter, log,
		checkoutapp.WithDefaultUIMode(uiMode),
		checkoutapp.WithDefaultRedirects(cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL),
		checkoutapp.WithMetrics(paymentMetrics),
	)

	jsonCache, err := factory.JSONCache()
	if err != nil {
		return err
	}
	catalogService := catalogapp.NewService(stripeAdapter, jsonCache, cfg.Catalog.CacheTTL, log,
		catalogapp.WithProducts(cfg.Catalog.Products),
		catalogapp.OnCatalogChange(priceLookup.Forget),
	)
	couponService := couponapp.NewService(stripeAdapter, cfg.Stripe.DefaultCurrency, log)

	sender := mailer.New(cfg.SMTP, log)
	archive, err := receiptArchive(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	idempotency, err := factory.IdempotencyStore()
	if err != nil {
		return err
	}
	webhookService := billingapp.NewWebhookService(billingapp.WebhookServiceConfig{
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
		Purchases:      persistence.NewGormPurchaseRepository(db.DB),
		Subscriptions:  persistence.NewGormSubscriptionRepository(db.DB),
		LineItems:      stripeAdapter,
		Receipts:       receipt.NewRenderer(cfg.App.Name),
		Archive:        archive,
		ArchivePrefix:  cfg.Storage.KeyPrefix,
		Mailer:         sender,
		Metrics:        paymentMetrics,
		Logger:         log,
	})

	prospectService := prospectapp.NewService(persistence.NewGormProspectRepository(db.DB), sender, log)
	blogService := blogapp.NewService(persistence.NewGormBlogRepository(db.DB), log)

	var revoked auth.RevocationList = auth.NewMemoryRevocationList()
	if redisClient != nil {
		revoked = auth.NewRedisRevocationList(redisClient)
	}
	adminService := adminapp.NewService(cfg.Admin, auth.NewJWTService(cfg.JWT), revoked, log)

	var redisPinger handler.Pinger
	if redisClient != nil {
		redisPinger = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	var rateCounter middleware.RateCounter = cache.NewInMemoryRateCounter()
	if redisClient != nil {
		rateCounter = cache.NewRedisRateCounter(redisClient, "")
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(router.Options{
		Config:        cfg,
		Logger:        log,
		Authenticator: adminService,
		RateCounter:   rateCounter,
		HTTPMetrics:   httpMetrics,
		Tracing:       tracerProvider.IsEnabled(),
		Profiling:     profiler.IsEnabled(),
	}, router.Handlers{
		Health:   handler.NewHealthHandler(db, redisPinger),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Coupon:   handler.NewCouponHandler(couponService),
		Webhook:  handler.NewWebhookHandler(webhookService),
		Prospect: handler.NewProspectHandler(prospectService),
		Blog:     handler.NewBlogHandler(blogService),
		Admin:    handler.NewAdminHandler(adminService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

// staticIntervals converts the configured price table to a lookup
func staticIntervals(cfg config.StripeConfig) checkout.StaticIntervalLookup {
	table := cfg.IntervalTable()
	out := make(checkout.StaticIntervalLookup, len(table))
	for priceID, interval := range table {
		out[priceID] = checkout.BillingInterval(interval)
	}
	return out
}

// receiptArchive returns the S3 archive when storage is enabled, or nil so
// receipts are only attached to the confirmation email
func receiptArchive(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (storage.ReceiptArchive, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	archive, err := storage.NewS3Archive(ctx, &cfg, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}
