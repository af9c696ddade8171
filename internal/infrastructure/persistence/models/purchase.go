package models

import (
	"github.com/fitcoach/backend/internal/domain/checkout"
	"github.com/fitcoach/backend/internal/domain/purchase"
)

// PurchaseModel is the persistence model for a recorded purchase.
// external_id is unique so event replays update the same row.
type PurchaseModel struct {
	BaseModel
	Reference          string                `gorm:"type:varchar(40);not null;uniqueIndex"`
	Source             purchase.Source       `gorm:"type:varchar(30);not null"`
	ExternalID         string                `gorm:"type:varchar(255);not null;uniqueIndex"`
	PaymentIntentID    string                `gorm:"type:varchar(255);index"`
	SubscriptionID     string                `gorm:"type:varchar(255);index"`
	CustomerID         string                `gorm:"type:varchar(255)"`
	CustomerEmail      string                `gorm:"type:varchar(320);index"`
	Mode               checkout.CheckoutMode `gorm:"type:varchar(20);not null"`
	AmountTotal        int64                 `gorm:"not null;default:0"`
	Currency           string                `gorm:"type:varchar(3);not null"`
	Status             purchase.Status       `gorm:"type:varchar(20);not null;index"`
	IsGift             bool                  `gorm:"not null;default:false"`
	GiftRecipientEmail string                `gorm:"type:varchar(320)"`
	UserID             string                `gorm:"type:varchar(255);index"`
	Metadata           StringMap             `gorm:"type:jsonb;not null"`
	ReceiptKey         string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// PurchaseModelFromDomain creates a persistence model from a domain purchase
func PurchaseModelFromDomain(p *purchase.Purchase) *PurchaseModel {
	m := &PurchaseModel{
		Reference:          p.Reference,
		Source:             p.Source,
		ExternalID:         p.ExternalID,
		PaymentIntentID:    p.PaymentIntentID,
		SubscriptionID:     p.SubscriptionID,
		CustomerID:         p.CustomerID,
		CustomerEmail:      p.CustomerEmail,
		Mode:               p.Mode,
		AmountTotal:        p.AmountTotal,
		Currency:           p.Currency,
		Status:             p.Status,
		IsGift:             p.IsGift,
		GiftRecipientEmail: p.GiftRecipientEmail,
		UserID:             p.UserID,
		Metadata:           copyMap(p.Metadata),
		ReceiptKey:         p.ReceiptKey,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ToDomain converts the model to a domain purchase
func (m *PurchaseModel) ToDomain() *purchase.Purchase {
	return &purchase.Purchase{
		BaseEntity:         m.BaseModel.ToDomain(),
		Reference:          m.Reference,
		Source:             m.Source,
		ExternalID:         m.ExternalID,
		PaymentIntentID:    m.PaymentIntentID,
		SubscriptionID:     m.SubscriptionID,
		CustomerID:         m.CustomerID,
		CustomerEmail:      m.CustomerEmail,
		Mode:               m.Mode,
		AmountTotal:        m.AmountTotal,
		Currency:           m.Currency,
		Status:             m.Status,
		IsGift:             m.IsGift,
		GiftRecipientEmail: m.GiftRecipientEmail,
		UserID:             m.UserID,
		Metadata:           copyMap(m.Metadata),
		ReceiptKey:         m.ReceiptKey,
	}
}
