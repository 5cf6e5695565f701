package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	EUR Currency = "EUR" // Euro (default)
	USD Currency = "USD" // US Dollar
	GBP Currency = "GBP" // British Pound
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = EUR

// IsValid reports whether the code is one of the supported currencies
func (c Currency) IsValid() bool {
	switch c {
	case EUR, USD, GBP:
		return true
	}
	return false
}

// DefaultPrecision is the number of decimal places of the default currency
const DefaultPrecision = 2

// Money is a value object representing a monetary amount as an integer
// count of minor units (e.g. cents). All ledger arithmetic is exact
// integer arithmetic; decimals are only produced for display and VAT
// share computation. Money is immutable - all operations return new
// instances.
type Money struct {
	amount    int64
	currency  Currency
	precision int32
}

// NewMoney creates a new Money from an amount in minor units
func NewMoney(amount int64, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:    amount,
		currency:  currency,
		precision: DefaultPrecision,
	}, nil
}

// NewMoneyWithPrecision creates a new Money with an explicit precision
func NewMoneyWithPrecision(amount int64, currency Currency, precision int32) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	if precision < 0 {
		return Money{}, errors.New("precision cannot be negative")
	}
	return Money{
		amount:    amount,
		currency:  currency,
		precision: precision,
	}, nil
}

// NewMoneyEUR creates Money in EUR from minor units (cents)
func NewMoneyEUR(amount int64) Money {
	return Money{amount: amount, currency: EUR, precision: DefaultPrecision}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: 0, currency: currency, precision: DefaultPrecision}
}

// ZeroEUR returns a zero-value Money in EUR
func ZeroEUR() Money {
	return Zero(EUR)
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Precision returns the number of decimal places of the minor unit
func (m Money) Precision() int32 {
	if m.currency == "" && m.precision == 0 {
		return DefaultPrecision
	}
	return m.precision
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// sameUnit verifies the other Money is denominated identically
func (m Money) sameUnit(other Money) error {
	if m.Currency() != other.Currency() {
		return fmt.Errorf("currency mismatch: %s and %s", m.Currency(), other.Currency())
	}
	if m.Precision() != other.Precision() {
		return fmt.Errorf("precision mismatch: %d and %d", m.Precision(), other.Precision())
	}
	return nil
}

// Add returns a new Money with the sum of both amounts.
// Returns error if currency or precision differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameUnit(other); err != nil {
		return Money{}, fmt.Errorf("cannot add money: %w", err)
	}
	return Money{amount: m.amount + other.amount, currency: m.Currency(), precision: m.Precision()}, nil
}

// MustAdd adds two Money values, panics if denominations differ
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference.
// Returns error if currency or precision differ.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameUnit(other); err != nil {
		return Money{}, fmt.Errorf("cannot subtract money: %w", err)
	}
	return Money{amount: m.amount - other.amount, currency: m.Currency(), precision: m.Precision()}, nil
}

// MustSubtract subtracts two Money values, panics if denominations differ
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MultiplyInt returns a new Money multiplied by an integer factor
func (m Money) MultiplyInt(factor int64) Money {
	return Money{amount: m.amount * factor, currency: m.Currency(), precision: m.Precision()}
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.Currency(), precision: m.Precision()}
}

// Abs returns a new Money with the absolute value
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Negate()
	}
	return m
}

// Equals returns true if both Money values have the same amount, currency
// and precision
func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() &&
		m.Precision() == other.Precision() &&
		m.amount == other.amount
}

// LessThan returns true if this Money is less than the other.
// Returns error if denominations differ.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameUnit(other); err != nil {
		return false, fmt.Errorf("cannot compare money: %w", err)
	}
	return m.amount < other.amount, nil
}

// GreaterThanOrEqual returns true if this Money is greater than or equal
// to the other. Returns error if denominations differ.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if err := m.sameUnit(other); err != nil {
		return false, fmt.Errorf("cannot compare money: %w", err)
	}
	return m.amount >= other.amount, nil
}

// Decimal returns the amount as a decimal in major units (e.g. 150 minor
// units with precision 2 becomes 1.50)
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -m.Precision())
}

// VatShare returns the VAT portion contained in this inclusive amount for
// the given percentage, rounded to the nearest minor unit. For a gross
// amount g and percentage p the share is g - g/(1+p/100).
func (m Money) VatShare(percentage decimal.Decimal) Money {
	gross := m.Decimal()
	divisor := decimal.NewFromInt(1).Add(percentage.Div(decimal.NewFromInt(100)))
	net := gross.Div(divisor)
	share := gross.Sub(net).Round(m.Precision())
	return Money{
		amount:    share.Shift(m.Precision()).IntPart(),
		currency:  m.Currency(),
		precision: m.Precision(),
	}
}

// String returns a human-readable representation in major units
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(m.Precision()), m.Currency())
}

// moneyJSON is the wire shape of Money
type moneyJSON struct {
	Amount    int64    `json:"amount"`
	Currency  Currency `json:"currency"`
	Precision int32    `json:"precision"`
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:    m.amount,
		Currency:  m.Currency(),
		Precision: m.Precision(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. An absent currency or
// precision falls back to the system default so that compact request
// bodies remain valid.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	if v.Precision == 0 {
		v.Precision = DefaultPrecision
	}
	m.amount = v.Amount
	m.currency = v.Currency
	m.precision = v.Precision
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the amount in minor units; currency and precision are uniform
// per deployment and restored from defaults on scan.
func (m Money) Value() (driver.Value, error) {
	return m.amount, nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = 0
		m.currency = DefaultCurrency
		m.precision = DefaultPrecision
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.amount = v
	case int:
		m.amount = int64(v)
	case []byte:
		var parsed int64
		if _, err := fmt.Sscanf(string(v), "%d", &parsed); err != nil {
			return fmt.Errorf("invalid integer value for money: %w", err)
		}
		m.amount = parsed
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	if m.precision == 0 {
		m.precision = DefaultPrecision
	}
	return nil
}
