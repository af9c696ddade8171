// Package catalog serves the product listing and keeps the provider catalog
// in line with configuration.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/cache"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductsCacheKey is where the grouped product listing is cached
const ProductsCacheKey = "catalog:products"

// Gateway is the slice of the payment provider the catalog uses
type Gateway interface {
	ListActivePrices(ctx context.Context) ([]billing.PriceInfo, error)
	FindPriceByLookupKey(ctx context.Context, lookupKey string) (*billing.PriceInfo, bool, error)
	CreateProductWithPrice(ctx context.Context, in billing.CreateProductPriceInput) (*billing.PriceInfo, error)
}

// Service lists and syncs catalog products
type Service struct {
	gateway  Gateway
	cache    cache.JSONCache
	ttl      time.Duration
	products []config.CatalogProduct
	onChange []func()
	logger   *zap.Logger
}

// Option configures Service
type Option func(*Service)

// WithProducts sets the product definitions SyncProducts pushes
func WithProducts(products []config.CatalogProduct) Option {
	return func(s *Service) { s.products = products }
}

// OnCatalogChange registers fn to run after a sync created prices
func OnCatalogChange(fn func()) Option {
	return func(s *Service) { s.onChange = append(s.onChange, fn) }
}

// NewService creates a catalog service. A nil cache disables caching.
func NewService(gateway Gateway, jsonCache cache.JSONCache, ttl time.Duration, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{gateway: gateway, cache: jsonCache, ttl: ttl, logger: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProducts returns active products with their active prices. Cache
// failures degrade to a provider call.
func (s *Service) GetProducts(ctx context.Context) ([]Product, error) {
	log := logger.Or(ctx, s.logger)

	if s.cache != nil {
		var cached []Product
		hit, err := s.cache.Get(ctx, ProductsCacheKey, &cached)
		if err != nil {
			log.Warn("Product cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	prices, err := s.gateway.ListActivePrices(ctx)
	if err != nil {
		return nil, err
	}
	products := GroupPrices(prices)

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, ProductsCacheKey, products, s.ttl); err != nil {
			log.Warn("Product cache write failed", zap.Error(err))
		}
	}

	log.Debug("Loaded products from provider", zap.Int("products", len(products)))
	return products, nil
}

// GroupPrices groups prices under their products, keeping the provider
// order. Prices without an active expanded product are skipped.
func GroupPrices(prices []billing.PriceInfo) []Product {
	products := make([]Product, 0)
	index := make(map[string]int)

	for _, p := range prices {
		if !p.Active || p.Product == nil || !p.Product.Active {
			continue
		}
		i, ok := index[p.Product.ID]
		if !ok {
			images := p.Product.Images
			if images == nil {
				images = []string{}
			}
			metadata := p.Product.Metadata
			if metadata == nil {
				metadata = map[string]string{}
			}
			products = append(products, Product{
				ID:          p.Product.ID,
				Name:        p.Product.Name,
				Description: p.Product.Description,
				Images:      images,
				Metadata:    metadata,
				Prices:      []Price{},
			})
			i = len(products) - 1
			index[p.Product.ID] = i
		}
		products[i].Prices = append(products[i].Prices, Price{
			ID:         p.ID,
			UnitAmount: p.UnitAmount,
			Currency:   p.Currency,
			Interval:   p.Interval,
			LookupKey:  p.LookupKey,
		})
	}
	return products
}

// InvalidateCache drops the cached listing
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, ProductsCacheKey)
}

// SyncProducts makes sure every configured product has a price with its
// lookup key, creating missing ones
func (s *Service) SyncProducts(ctx context.Context) (*SyncResult, error) {
	if err := validateProducts(s.products); err != nil {
		return nil, err
	}
	log := logger.Or(ctx, s.logger)
	result := &SyncResult{}

	for _, def := range s.products {
		existing, found, err := s.gateway.FindPriceByLookupKey(ctx, def.LookupKey)
		if err != nil {
			return result, fmt.Errorf("find price %s: %w", def.LookupKey, err)
		}
		if found {
			result.Existing = append(result.Existing, synced(def.LookupKey, existing))
			continue
		}

		created, err := s.gateway.CreateProductWithPrice(ctx, billing.CreateProductPriceInput{
			LookupKey:   def.LookupKey,
			Name:        def.Name,
			Description: def.Description,
			UnitAmount:  def.UnitAmount,
			Currency:    def.Currency,
			Interval:    def.Interval,
		})
		if err != nil {
			return result, fmt.Errorf("create product %s: %w", def.LookupKey, err)
		}
		result.Created = append(result.Created, synced(def.LookupKey, created))
		log.Info("Catalog product created",
			zap.String("lookup_key", def.LookupKey),
			zap.String("price_id", created.ID))
	}

	if err := s.InvalidateCache(ctx); err != nil {
		log.Warn("Product cache invalidation failed", zap.Error(err))
	}
	if len(result.Created) > 0 {
		for _, fn := range s.onChange {
			fn()
		}
	}
	return result, nil
}

func synced(lookupKey string, p *billing.PriceInfo) SyncedPrice {
	sp := SyncedPrice{LookupKey: lookupKey, PriceID: p.ID}
	if p.Product != nil {
		sp.ProductID = p.Product.ID
	}
	return sp
}

func validateProducts(products []config.CatalogProduct) error {
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		field := fmt.Sprintf("catalog.products[%d]", i)
		if strings.TrimSpace(p.LookupKey) == "" {
			return shared.NewValidationError(field+".lookup_key", "is required")
		}
		if seen[p.LookupKey] {
			return shared.NewValidationError(field+".lookup_key", "duplicate lookup key %q", p.LookupKey)
		}
		seen[p.LookupKey] = true
		if strings.TrimSpace(p.Name) == "" {
			return shared.NewValidationError(field+".name", "is required")
		}
		if p.UnitAmount <= 0 {
			return shared.NewValidationError(field+".unit_amount", "must be positive")
		}
		switch p.Interval {
		case "", "month", "year":
		default:
			return shared.NewValidationError(field+".interval", "must be month, year or empty")
		}
	}
	return nil
}
