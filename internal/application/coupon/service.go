// Package coupon manages provider discount coupons for admins.
package coupon

import (
	"context"
	"strings"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Duration values accepted by the provider
const (
	DurationOnce      = "once"
	DurationRepeating = "repeating"
	DurationForever   = "forever"
)

// List limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Gateway is the coupon slice of the payment provider
type Gateway interface {
	CreateCoupon(ctx context.Context, in billing.CouponInput) (*billing.Coupon, error)
	ListCoupons(ctx context.Context, limit int) ([]billing.Coupon, error)
	DeleteCoupon(ctx context.Context, couponID string) error
}

// CreateRequest is the admin input for a new coupon
type CreateRequest struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	PercentOff       *float64 `json:"percentOff"`
	AmountOff        *int64   `json:"amountOff"`
	Currency         string   `json:"currency"`
	Duration         string   `json:"duration"`
	DurationInMonths *int64   `json:"durationInMonths"`
	MaxRedemptions   *int64   `json:"maxRedemptions"`
}

// Service validates coupon requests before they reach the provider
type Service struct {
	gateway         Gateway
	defaultCurrency string
	logger          *zap.Logger
}

// NewService creates a coupon service. defaultCurrency applies to amount
// coupons that name none.
func NewService(gateway Gateway, defaultCurrency string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gateway: gateway, defaultCurrency: strings.ToLower(defaultCurrency), logger: log}
}

// Create validates req and creates the coupon
func (s *Service) Create(ctx context.Context, req CreateRequest) (*billing.Coupon, error) {
	in, err := s.toInput(req)
	if err != nil {
		return nil, err
	}
	c, err := s.gateway.CreateCoupon(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Or(ctx, s.logger).Info("Coupon created",
		zap.String("coupon_id", c.ID),
		zap.String("duration", c.Duration))
	return c, nil
}

// List returns up to limit coupons. Zero means the default limit.
func (s *Service) List(ctx context.Context, limit int) ([]billing.Coupon, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, shared.NewValidationError("limit", "must be between 1 and %d", MaxListLimit)
	}
	return s.gateway.ListCoupons(ctx, limit)
}

// Delete removes a coupon by id
func (s *Service) Delete(ctx context.Context, couponID string) error {
	if strings.TrimSpace(couponID) == "" {
		return shared.NewValidationError("id", "is required")
	}
	return s.gateway.DeleteCoupon(ctx, couponID)
}

func (s *Service) toInput(req CreateRequest) (billing.CouponInput, error) {
	in := billing.CouponInput{
		ID:       strings.TrimSpace(req.ID),
		Name:     strings.TrimSpace(req.Name),
		Duration: req.Duration,
	}

	switch {
	case req.PercentOff != nil && req.AmountOff != nil:
		return in, shared.NewValidationError("", "exactly one of percentOff and amountOff is allowed")
	case req.PercentOff == nil && req.AmountOff == nil:
		return in, shared.NewValidationError("", "one of percentOff and amountOff is required")
	case req.PercentOff != nil:
		if *req.PercentOff <= 0 || *req.PercentOff > 100 {
			return in, shared.NewValidationError("percentOff", "must be greater than 0 and at most 100")
		}
		in.PercentOff = *req.PercentOff
	default:
		if *req.AmountOff <= 0 {
			return in, shared.NewValidationError("amountOff", "must be positive")
		}
		in.AmountOff = *req.AmountOff
		in.Currency = strings.ToLower(strings.TrimSpace(req.Currency))
		if in.Currency == "" {
			in.Currency = s.defaultCurrency
		}
		if in.Currency == "" {
			return in, shared.NewValidationError("currency", "is required with amountOff")
		}
	}

	switch req.Duration {
	case DurationRepeating:
		if req.DurationInMonths == nil || *req.DurationInMonths <= 0 {
			return in, shared.NewValidationError("durationInMonths", "is required for repeating coupons")
		}
		in.DurationInMonths = *req.DurationInMonths
	case DurationOnce, DurationForever:
		if req.DurationInMonths != nil {
			return in, shared.NewValidationError("durationInMonths", "is only allowed for repeating coupons")
		}
	case "":
		return in, shared.NewValidationError("duration", "is required")
	default:
		return in, shared.NewValidationError("duration", "must be once, repeating or forever")
	}

	if req.MaxRedemptions != nil {
		if *req.MaxRedemptions <= 0 {
			return in, shared.NewValidationError("maxRedemptions", "must be positive")
		}
		in.MaxRedemptions = *req.MaxRedemptions
	}
	return in, nil
}
