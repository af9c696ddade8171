package models

import (
	"time"

	"github.com/fitcoach/backend/internal/domain/purchase"
)

// SubscriptionModel is the persistence model for a provider subscription
type SubscriptionModel struct {
	BaseModel
	StripeSubscriptionID string                      `gorm:"type:varchar(255);not null;uniqueIndex"`
	CustomerID           string                      `gorm:"type:varchar(255);index"`
	CustomerEmail        string                      `gorm:"type:varchar(320)"`
	PriceID              string                      `gorm:"type:varchar(255)"`
	Status               purchase.SubscriptionStatus `gorm:"type:varchar(30);not null;index"`
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool `gorm:"not null;default:false"`
	CanceledAt           *time.Time
	UserID               string `gorm:"type:varchar(255);index"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// SubscriptionModelFromDomain creates a persistence model from a domain subscription
func SubscriptionModelFromDomain(s *purchase.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		StripeSubscriptionID: s.StripeSubscriptionID,
		CustomerID:           s.CustomerID,
		CustomerEmail:        s.CustomerEmail,
		PriceID:              s.PriceID,
		Status:               s.Status,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		CanceledAt:           s.CanceledAt,
		UserID:               s.UserID,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// ToDomain converts the model to a domain subscription
func (m *SubscriptionModel) ToDomain() *purchase.Subscription {
	return &purchase.Subscription{
		BaseEntity:           m.BaseModel.ToDomain(),
		StripeSubscriptionID: m.StripeSubscriptionID,
		CustomerID:           m.CustomerID,
		CustomerEmail:        m.CustomerEmail,
		PriceID:              m.PriceID,
		Status:               m.Status,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		CanceledAt:           m.CanceledAt,
		UserID:               m.UserID,
	}
}
