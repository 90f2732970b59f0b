/*
Package generic provides the domain-agnostic core of the attendance engine.

PURPOSE:
  This package contains the value types and calendar/clock algorithms that
  the productivity engine is built from. Nothing in here knows about shifts,
  punches or salaries; it only knows about money, minutes, dates and
  holidays.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - Minutes: Minutes since midnight (or a duration in minutes)
  - WorkerID: Type-safe identifier for the person being paid

DESIGN PRINCIPLES:
  1. Precision: Money uses decimal.Decimal to avoid floating-point drift
  2. Purity: No wall-clock reads, no I/O
  3. Type Safety: Strong typing for ids and units

USAGE:
  perDay := generic.NewMoney(30000).DivRound(generic.NewMoneyFromInt(26), 2)
  fmt.Println(generic.FormatCurrency(perDay)) // ₹1153.85

SEE ALSO:
  - clock.go: Wall-clock string codec
  - period.go: Date range walking
  - holiday.go: Holiday calendar with per-worker applicability
*/
package generic

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount (always rupees for this system)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("amount %q: %w", s, err)
	}
	return Money{Value: d}, nil
}

// MustParseMoney panics on a malformed amount; for literals only.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func Zero() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(b Money) Money           { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money           { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Round(places int32) Money    { return Money{Value: m.Value.Round(places)} }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool    { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool       { return m.Value.LessThan(b.Value) }
func (m Money) Equal(b Money) bool          { return m.Value.Equal(b.Value) }
func (m Money) Float64() float64            { return m.Value.InexactFloat64() }
func (m Money) String() string              { return m.Value.StringFixed(2) }

func (m Money) Min(b Money) Money {
	if m.LessThan(b) {
		return m
	}
	return b
}

func (m Money) Max(b Money) Money {
	if m.GreaterThan(b) {
		return m
	}
	return b
}

// DivRound divides and rounds half away from zero. Dividing by zero yields
// zero rather than panicking; callers that care check the divisor first.
func (m Money) DivRound(d Money, places int32) Money {
	if d.IsZero() {
		return Zero()
	}
	return Money{Value: m.Value.DivRound(d.Value, places)}
}

// MulMinutes prices a number of minutes at a per-minute rate.
func (m Money) MulMinutes(min Minutes) Money {
	return Money{Value: m.Value.Mul(decimal.NewFromFloat(float64(min)))}
}

// MarshalJSON writes money as a fixed two-decimal string ("1121.75").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Value.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Value.UnmarshalJSON(data)
}

// NonNegative clamps negative amounts to zero.
func (m Money) NonNegative() Money {
	if m.IsNegative() {
		return Zero()
	}
	return m
}

// =============================================================================
// MINUTES - Clock position or duration, fractional when seconds are present
// =============================================================================

type Minutes float64

const (
	MinutesPerHour Minutes = 60
	MinutesPerDay  Minutes = 24 * 60
)

// Positive returns m if it is greater than zero, otherwise zero.
func (m Minutes) Positive() Minutes {
	if m > 0 {
		return m
	}
	return 0
}

// Whole rounds to the nearest whole minute.
func (m Minutes) Whole() int { return int(math.Round(float64(m))) }

func MinMinutes(a, b Minutes) Minutes {
	if a < b {
		return a
	}
	return b
}

func MaxMinutes(a, b Minutes) Minutes {
	if a > b {
		return a
	}
	return b
}

// Overlap returns the length of the intersection of [aFrom, aTo] and [bFrom, bTo].
func Overlap(aFrom, aTo, bFrom, bTo Minutes) Minutes {
	return (MinMinutes(aTo, bTo) - MaxMinutes(aFrom, bFrom)).Positive()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type ShiftName string
