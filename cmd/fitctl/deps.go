package main

import (
	"context"
	"errors"

	catalogapp "github.com/fitcoach/backend/internal/application/catalog"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/cache"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

// WebhookAPI manages provider webhook endpoints
type WebhookAPI interface {
	ListWebhookEndpoints(ctx context.Context) ([]billing.WebhookEndpoint, error)
	CreateWebhookEndpoint(ctx context.Context, url string, events []string) (*billing.WebhookEndpoint, error)
	DeleteWebhookEndpoint(ctx context.Context, endpointID string) error
}

// ProductSyncer pushes configured products to the provider
type ProductSyncer interface {
	SyncProducts(ctx context.Context) (*catalogapp.SyncResult, error)
}

// Deps are the collaborators the commands use
type Deps struct {
	Webhooks      WebhookAPI
	Products      ProductSyncer
	Mailer        mailer.Sender
	WebhookEvents []string
	SMTPEnabled   bool
	Close         func()
}

func productionDeps(ctx context.Context) (*Deps, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	adapter, err := billing.NewStripeAdapter(billing.NewStripeConfig(cfg.Stripe), log)
	if err != nil {
		return nil, err
	}

	// products sync invalidates the shared product cache, so it needs the
	// same Redis the server uses when one is configured
	var client redis.UniversalClient
	closeFn := func() { _ = log.Sync() }
	if cfg.Redis.Host != "" {
		rc, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, product cache will not be invalidated", zap.Error(err))
		} else {
			client = rc
			closeFn = func() {
				_ = rc.Close()
				_ = log.Sync()
			}
		}
	}
	jsonCache, err := cache.NewFactory(client, cache.WithLogger(log)).JSONCache()
	if err != nil {
		return nil, err
	}

	return &Deps{
		Webhooks: adapter,
		Products: catalogapp.NewService(adapter, jsonCache, cfg.Catalog.CacheTTL, log,
			catalogapp.WithProducts(cfg.Catalog.Products)),
		Mailer:        mailer.New(cfg.SMTP, log),
		WebhookEvents: webhookEvents(cfg),
		SMTPEnabled:   cfg.SMTP.Enabled,
		Close:         closeFn,
	}, nil
}

func webhookEvents(cfg *config.Config) []string {
	return append([]string(nil), cfg.Stripe.WebhookEvents...)
}
