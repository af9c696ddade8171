package checkout

import (
	"context"
)

// IntervalLookup resolves whether a catalog price is recurring.
// found is false when the lookup has no opinion about the price.
type IntervalLookup interface {
	RecurringInterval(ctx context.Context, priceID string) (interval BillingInterval, found bool, err error)
}

// StaticIntervalLookup is a fixed price id to interval table, usually loaded
// from configuration.
type StaticIntervalLookup map[string]BillingInterval

// RecurringInterval implements IntervalLookup
func (s StaticIntervalLookup) RecurringInterval(_ context.Context, priceID string) (BillingInterval, bool, error) {
	interval, ok := s[priceID]
	return interval, ok, nil
}

// ChainedIntervalLookup asks each lookup in order and returns the first answer.
type ChainedIntervalLookup []IntervalLookup

// RecurringInterval implements IntervalLookup
func (c ChainedIntervalLookup) RecurringInterval(ctx context.Context, priceID string) (BillingInterval, bool, error) {
	for _, l := range c {
		if l == nil {
			continue
		}
		interval, found, err := l.RecurringInterval(ctx, priceID)
		if err != nil {
			return IntervalNone, false, err
		}
		if found {
			return interval, true, nil
		}
	}
	return IntervalNone, false, nil
}
