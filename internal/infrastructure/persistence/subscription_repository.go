package persistence

import (
	"context"
	"errors"

	"github.com/fitcoach/backend/internal/domain/purchase"
	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements purchase.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByStripeID finds a subscription by the provider subscription id
func (r *GormSubscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*purchase.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts by stripe_subscription_id
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *purchase.Subscription) error {
	model := models.SubscriptionModelFromDomain(s)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id", "customer_email", "price_id", "status", "current_period_end",
				"cancel_at_period_end", "canceled_at", "user_id", "updated_at",
			}),
		}).
		Create(model).Error
}

var _ purchase.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
