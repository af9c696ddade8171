package catalog

// Price is one purchasable price of a product
type Price struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unitAmount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
	LookupKey  string `json:"lookupKey,omitempty"`
}

// Product is a catalog product with its active prices
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Images      []string          `json:"images"`
	Metadata    map[string]string `json:"metadata"`
	Prices      []Price           `json:"prices"`
}

// SyncResult reports what products sync did per lookup key
type SyncResult struct {
	Created  []SyncedPrice
	Existing []SyncedPrice
}

// SyncedPrice pairs a configured lookup key with its provider price
type SyncedPrice struct {
	LookupKey string
	PriceID   string
	ProductID string
}
