package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of fractional digits a Money carries. Balances
// are whole currency units, so every constructed or computed value is
// rounded to zero decimal places, half up.
const moneyScale = 0

// Money is an immutable, non-negative amount of currency. Arithmetic never
// mutates an operand; every operation returns a new value. Comparison and
// equality go by normalized numeric value, not textual representation.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is the zero amount.
var ZeroMoney = Money{amount: decimal.Zero}

// NewMoney builds a Money from a decimal value, rounding to the fixed scale.
// Negative values are rejected with ErrInvalidAmount.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, &InvalidAmountError{Value: amount.String()}
	}
	return Money{amount: amount.Round(moneyScale)}, nil
}

// MoneyFromInt64 builds a Money from a whole number of currency units.
func MoneyFromInt64(amount int64) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount))
}

// MoneyFromString parses a decimal string into a Money.
func MoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, &InvalidAmountError{Value: amount}
	}
	return NewMoney(d)
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) GreaterThan(other Money) bool        { return m.amount.GreaterThan(other.amount) }
func (m Money) GreaterThanOrEqual(other Money) bool { return m.amount.GreaterThanOrEqual(other.amount) }
func (m Money) LessThan(other Money) bool           { return m.amount.LessThan(other.amount) }
func (m Money) LessThanOrEqual(other Money) bool    { return m.amount.LessThanOrEqual(other.amount) }

// Cmp returns -1, 0 or 1 comparing m against other by numeric value.
func (m Money) Cmp(other Money) int { return m.amount.Cmp(other.amount) }

// Equal reports numeric equality.
func (m Money) Equal(other Money) bool { return m.amount.Equal(other.amount) }

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount).Round(moneyScale)}
}

// Subtract returns m - other, failing if the result would be negative.
// Callers that want a soft outcome should pre-check with GreaterThanOrEqual.
func (m Money) Subtract(other Money) (Money, error) {
	if m.amount.LessThan(other.amount) {
		return Money{}, &InsufficientFundsError{Balance: m, Requested: other}
	}
	return Money{amount: m.amount.Sub(other.amount).Round(moneyScale)}, nil
}

// Multiply returns m scaled by an arbitrary-precision multiplier, rounded to
// the fixed scale. Used for interest-style calculations.
func (m Money) Multiply(multiplier decimal.Decimal) (Money, error) {
	return NewMoney(m.amount.Mul(multiplier))
}

// Decimal returns the underlying normalized value.
func (m Money) Decimal() decimal.Decimal { return m.amount }

// Int64 returns the amount as a whole number of currency units.
func (m Money) Int64() int64 { return m.amount.IntPart() }

// String returns the plain numeric representation, e.g. "100000".
func (m Money) String() string { return m.amount.String() }

// Format renders the amount with thousands separators for display,
// e.g. "50,000,000".
func (m Money) Format() string {
	digits := m.amount.Round(moneyScale).String()
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
