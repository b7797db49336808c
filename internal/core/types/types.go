// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyScale is the currency scale used for presentation rounding.
// Rounding is applied once per document total, not per line, so that
// accumulated line amounts do not drift.
const MoneyScale = 2

// NewMoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// RoundMoney rounds to currency scale (2 decimal places).
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// Quantity is a whole-unit count. The business counts pieces (bottles,
// pumps, ribbons); fractional quantities do not occur.
type Quantity int64

func (q Quantity) IsZero() bool     { return q == 0 }
func (q Quantity) IsPositive() bool { return q > 0 }
func (q Quantity) IsNegative() bool { return q < 0 }
func (q Quantity) Neg() Quantity    { return -q }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Int64 returns the raw count.
func (q Quantity) Int64() int64 { return int64(q) }

// Decimal converts the count for decimal arithmetic (amount calculations).
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(q))
}

// Ratio returns q divided by total as a decimal, or zero when total is zero.
func Ratio(q, total Quantity) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return q.Decimal().DivRound(total.Decimal(), 6)
}
