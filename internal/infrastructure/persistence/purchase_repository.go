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

// GormPurchaseRepository implements purchase.PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByExternalID finds a purchase by its provider object id
func (r *GormPurchaseRepository) FindByExternalID(ctx context.Context, externalID string) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds a purchase by its customer-facing reference
func (r *GormPurchaseRepository) FindByReference(ctx context.Context, reference string) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts the purchase or, when its external id already exists,
// updates the mutable columns of that row
func (r *GormPurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	model := models.PurchaseModelFromDomain(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_intent_id", "subscription_id", "customer_id", "customer_email",
				"mode", "amount_total", "currency", "status", "is_gift",
				"gift_recipient_email", "user_id", "metadata", "receipt_key", "updated_at",
			}),
		}).
		Create(model).Error
}

var _ purchase.PurchaseRepository = (*GormPurchaseRepository)(nil)
