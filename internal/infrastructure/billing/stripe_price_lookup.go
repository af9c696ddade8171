package billing

import (
	"context"
	"sync"
	"time"

	"github.com/fitcoach/backend/internal/domain/checkout"
)

// PriceGetter retrieves a single catalog price
type PriceGetter interface {
	GetPrice(ctx context.Context, priceID string) (*PriceInfo, error)
}

type cachedInterval struct {
	interval checkout.BillingInterval
	found    bool
	expires  time.Time
}

// PriceIntervalLookup classifies catalog prices by asking Stripe, caching
// answers for ttl. Unknown price ids report found=false so session creation
// surfaces Stripe's own error.
type PriceIntervalLookup struct {
	prices PriceGetter
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cachedInterval
}

// NewPriceIntervalLookup creates a lookup backed by prices
func NewPriceIntervalLookup(prices PriceGetter, ttl time.Duration) *PriceIntervalLookup {
	return &PriceIntervalLookup{
		prices: prices,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]cachedInterval),
	}
}

// RecurringInterval implements checkout.IntervalLookup
func (l *PriceIntervalLookup) RecurringInterval(ctx context.Context, priceID string) (checkout.BillingInterval, bool, error) {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.cache[priceID]
	l.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.interval, entry.found, nil
	}

	p, err := l.prices.GetPrice(ctx, priceID)
	if err != nil {
		if IsResourceMissing(err) {
			l.store(priceID, cachedInterval{interval: checkout.IntervalNone, found: false, expires: now.Add(l.ttl)})
			return checkout.IntervalNone, false, nil
		}
		return checkout.IntervalNone, false, err
	}

	entry = cachedInterval{
		interval: checkout.BillingInterval(p.Interval),
		found:    true,
		expires:  now.Add(l.ttl),
	}
	if !entry.interval.IsValid() {
		// day and week prices are recurring but outside the site's catalog
		entry.interval = checkout.IntervalMonth
	}
	l.store(priceID, entry)
	return entry.interval, true, nil
}

// Forget drops cached answers
func (l *PriceIntervalLookup) Forget() {
	l.mu.Lock()
	l.cache = make(map[string]cachedInterval)
	l.mu.Unlock()
}

func (l *PriceIntervalLookup) store(priceID string, entry cachedInterval) {
	if l.ttl <= 0 {
		return
	}
	l.mu.Lock()
	l.cache[priceID] = entry
	l.mu.Unlock()
}
