// Package core holds the domain types shared by the aggregator, the
// transaction sources and the report writers.
//
// Amounts are exact decimals. Nothing in this package rounds except the
// presentation helpers (String and Format).
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a signed amount in major currency units. Debits are negative,
// credits are positive.
type Money struct {
	value decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

// MoneyFromMinorUnits converts an amount in minor units (cents) using the
// fraction digits of the currency. Unknown currencies assume two digits.
func MoneyFromMinorUnits(units int64, currency string) Money {
	return Money{value: decimal.New(units, -fraction(currency))}
}

// ParseMoney parses a signed decimal string such as "-12.34". A single
// decimal comma followed by at most two digits ("4,50") is accepted; any
// other comma, such as a thousands separator in "1,234", is rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		i := strings.IndexByte(s, ',')
		if strings.Count(s, ",") != 1 || strings.Contains(s, ".") || len(s)-i-1 > 2 {
			return Money{}, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: d}, nil
}

func (m Money) Decimal() decimal.Decimal    { return m.value }
func (m Money) Add(n Money) Money           { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money           { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money                  { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                  { return Money{value: m.value.Abs()} }
func (m Money) Mul(d decimal.Decimal) Money { return Money{value: m.value.Mul(d)} }
func (m Money) IsZero() bool                { return m.value.IsZero() }
func (m Money) IsNegative() bool            { return m.value.IsNegative() }
func (m Money) IsPositive() bool            { return m.value.IsPositive() }
func (m Money) Equal(n Money) bool          { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int             { return m.value.Cmp(n.value) }
func (m Money) Round(places int32) Money    { return Money{value: m.value.Round(places)} }
func (m Money) LessThan(n Money) bool       { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool    { return m.value.GreaterThan(n.value) }

// StringFixed formats with a fixed number of decimal places.
func (m Money) StringFixed(places int32) string { return m.value.StringFixed(places) }

// String returns the amount with two decimals, the layout used in report cells.
func (m Money) String() string { return m.value.StringFixed(2) }

// Format renders the amount with the currency symbol, e.g. "-$12.34".
func (m Money) Format(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return m.value.StringFixed(2) + " " + currency
	}
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func fraction(currency string) int32 {
	if cur := money.GetCurrency(currency); cur != nil {
		return int32(cur.Fraction)
	}
	return 2
}
