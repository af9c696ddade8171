package valueobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the currency used when a request does not name one.
const DefaultCurrency = "usd"

// Money is an immutable amount in major units of an ISO 4217 currency.
type Money struct {
	amount   decimal.Decimal
	currency currency.Unit
}

// NewMoney creates money from a major-unit amount and a currency code.
// The code is case-insensitive ("usd" and "USD" are the same).
func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	if code == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return Money{amount: amount, currency: unit}, nil
}

// FromMinorUnits creates money from an integer amount of minor units,
// as reported by payment providers (cents for USD, yen for JPY).
func FromMinorUnits(minor int64, code string) (Money, error) {
	m, err := NewMoney(decimal.Zero, code)
	if err != nil {
		return Money{}, err
	}
	m.amount = decimal.New(minor, -m.scale())
	return m, nil
}

// MustFromMinorUnits is FromMinorUnits for known-good currency codes.
func MustFromMinorUnits(minor int64, code string) Money {
	m, err := FromMinorUnits(minor, code)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) scale() int32 {
	scale, _ := currency.Standard.Rounding(m.currency)
	return int32(scale)
}

// Amount returns the major-unit amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the lower-case currency code used by payment providers.
func (m Money) Currency() string {
	return strings.ToLower(m.currency.String())
}

// MinorAmount returns the amount in minor units, rounded half away from
// zero, without narrowing to int64.
func (m Money) MinorAmount() decimal.Decimal {
	return m.amount.Shift(m.scale()).Round(0)
}

// MinorUnits converts to integer minor units, rounding half away from zero.
// Amounts beyond the int64 range wrap; bound them with MinorAmount first.
func (m Money) MinorUnits() int64 {
	return m.MinorAmount().IntPart()
}

// Multiply returns the amount multiplied by an integer factor.
func (m Money) Multiply(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: m.currency}
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// IsNegative returns true if the amount is below zero.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// String returns the amount with the currency's standard number of decimals.
func (m Money) String() string {
	return m.amount.StringFixed(m.scale()) + " " + strings.ToUpper(m.Currency())
}

// Format renders the amount with its currency symbol for display in emails
// and receipts, e.g. "$ 29.99".
func (m Money) Format(tag language.Tag) string {
	f, _ := m.amount.Round(m.scale()).Float64()
	return message.NewPrinter(tag).Sprint(currency.Symbol(m.currency.Amount(f)))
}
