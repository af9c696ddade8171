package checkout

import (
	"github.com/fitcoach/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineItem is a priced entry submitted to a checkout session. Exactly one of
// Price and PriceData is set.
type LineItem struct {
	Price     string     `json:"price,omitempty"`
	PriceData *PriceData `json:"price_data,omitempty"`
	Quantity  int64      `json:"quantity"`
}

// PriceData is an inline price descriptor.
type PriceData struct {
	Currency    string      `json:"currency"`
	UnitAmount  int64       `json:"unit_amount"`
	ProductData ProductData `json:"product_data"`
	Recurring   *Recurring  `json:"recurring,omitempty"`
}

// ProductData names the product of an inline price.
type ProductData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Recurring carries the interval of a recurring inline price.
type Recurring struct {
	Interval BillingInterval `json:"interval"`
}

// IsCatalogPrice returns true when the item references a catalog price.
func (l LineItem) IsCatalogPrice() bool {
	return l.Price != ""
}

// ToCartItem maps a line item echoed by the provider back to a cart item.
// Inline prices are converted from minor units of their currency.
func (l LineItem) ToCartItem() CartItem {
	item := CartItem{
		StripePriceID: l.Price,
		Quantity:      l.Quantity,
	}
	if l.PriceData == nil {
		return item
	}
	price := decimal.New(l.PriceData.UnitAmount, -2)
	if m, err := valueobject.FromMinorUnits(l.PriceData.UnitAmount, l.PriceData.Currency); err == nil {
		price = m.Amount()
	}
	item.Price = &price
	item.Name = l.PriceData.ProductData.Name
	item.Description = l.PriceData.ProductData.Description
	if l.PriceData.Recurring != nil {
		item.BillingInterval = l.PriceData.Recurring.Interval
	}
	return item
}
