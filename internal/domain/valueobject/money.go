// Package valueobject contains value objects that represent concepts without identity.
// Value objects are immutable and compared by their attributes rather than identity.
// They encapsulate validation logic and ensure data integrity.
//
// Value Objects follow these principles:
//   - Immutability: Once created, they cannot be changed.
//   - Equality: Two value objects are equal if all their attributes are equal.
//   - Self-validation: They validate their own data upon creation.
//   - Side-effect free: Methods returns new instances rather than modifying state
package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a monetary currency using ISO 4217 codes.
type Currency string

// Supported currencies in the system.
const (
	CurrencyINR Currency = "INR" // Indian Rupee
	CurrencyUSD Currency = "USD" // US Dollar
	CurrencyEUR Currency = "EUR" // Euro
	CurrencyGBP Currency = "GBP" // British Pound
)

// Money errors define domain-specific error conditions.
var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch in operation")
)

// Money represents a monetary value with currency.
// The amount is held as an arbitrary-precision decimal in major units
// (rupees, dollars) so that rate arithmetic never drifts.
//
// Example usage:
//
//	price := valueobject.NewMoneyFromFloat(299, valueobject.CurrencyINR) // ₹299.00
//	total := price.Multiply(3)                                           // ₹897.00
type Money struct {
	// Amount in major currency units
	Amount decimal.Decimal `json:"amount"`

	// Currency using ISO 4217 code
	Currency Currency `json:"currency"`
}

// NewMoney creates a new Money value object.
//
// Parameters:
//   - amount: Amount in major units
//   - currency: ISO 4217 currency code
//
// Returns:
//   - Money: the created Money value object
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{
		Amount:   amount,
		Currency: currency,
	}
}

// NewMoneyFromFloat creates a new Money from a decimal amount.
// The float must be finite; cart lines are validated before pricing.
//
// Parameters:
//   - amount: Decimal amount (e.g., 19.99)
//   - currency: ISO 4217 currency code
//
// Returns:
//   - Money: the created Money value object
func NewMoneyFromFloat(amount float64, currency Currency) Money {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// Zero returns a zero-value Money in the specified currency.
func Zero(currency Currency) Money {
	return NewMoney(decimal.Zero, currency)
}

// Add adds two Money values and returns a new Money.
// Both values must have the same currency.
//
// Note: Panics if currencies do not match. Use AddSafe for error handling.
func (m Money) Add(other Money) Money {
	sum, err := m.AddSafe(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// AddSafe adds two Money values with error handling.
//
// Returns:
//   - Money: the sum of the two Money values
//   - error: ErrCurrencyMismatch if currencies do not match
func (m Money) AddSafe(other Money) (Money, error) {
	if m.Currency != other.Currency && !m.IsZero() && !other.IsZero() {
		return Money{}, ErrCurrencyMismatch
	}
	currency := m.Currency
	if currency == "" || m.IsZero() && other.Currency != "" {
		currency = other.Currency
	}
	return NewMoney(m.Amount.Add(other.Amount), currency), nil
}

// Subtract subtracts another Money from this Money and returns a new Money.
// Both values must have the same currency.
func (m Money) Subtract(other Money) Money {
	if m.Currency != other.Currency && !m.IsZero() && !other.IsZero() {
		panic(ErrCurrencyMismatch)
	}
	return NewMoney(m.Amount.Sub(other.Amount), m.Currency)
}

// Multiply multiplies the Money amount by an integer quantity.
func (m Money) Multiply(quantity int) Money {
	return NewMoney(m.Amount.Mul(decimal.NewFromInt(int64(quantity))), m.Currency)
}

// MultiplyDecimal multiplies the Money amount by a decimal factor.
// The result is not rounded.
func (m Money) MultiplyDecimal(factor decimal.Decimal) Money {
	return NewMoney(m.Amount.Mul(factor), m.Currency)
}

// RoundToUnit rounds to the nearest whole currency unit, half away from zero.
func (m Money) RoundToUnit() Money {
	return NewMoney(m.Amount.Round(0), m.Currency)
}

// IsZero checks if the Money amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsPositive checks if the Money amount is positive.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// IsNegative checks if the Money amount is negative.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// GreaterThanOrEqual checks if this Money is at least another Money.
//
// Note: Panics if currencies do not match.
func (m Money) GreaterThanOrEqual(other Money) bool {
	if m.Currency != other.Currency {
		panic(ErrCurrencyMismatch)
	}
	return m.Amount.GreaterThanOrEqual(other.Amount)
}

// ToFloat converts the Money amount to a float64 representation for transport.
func (m Money) ToFloat() float64 {
	return m.Amount.InexactFloat64()
}

// String returns a formatted string representation of the Money.
//
// Returns:
//   - string: Formatted string (e.g., "INR 19.99")
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, m.Amount.StringFixed(2))
}

// Format returns the money formatted with its currency symbol.
// Whole amounts are rendered without decimals (e.g., "₹40"), others with two.
func (m Money) Format() string {
	symbol := currencySymbol(m.Currency)
	if m.Amount.Equal(m.Amount.Truncate(0)) {
		return symbol + m.Amount.StringFixed(0)
	}
	return symbol + m.Amount.StringFixed(2)
}

// currencySymbol returns the symbol for a given currency.
func currencySymbol(c Currency) string {
	symbols := map[Currency]string{
		CurrencyINR: "₹",
		CurrencyUSD: "$",
		CurrencyEUR: "€",
		CurrencyGBP: "£",
	}

	if symbol, ok := symbols[c]; ok {
		return symbol
	}
	return string(c) + " "
}

// ParseCurrency validates an ISO 4217 code against the supported set.
//
// Returns:
//   - Currency: the parsed currency
//   - error: ErrInvalidCurrency if the code is not supported
func ParseCurrency(code string) (Currency, error) {
	switch c := Currency(code); c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
}
