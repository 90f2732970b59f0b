package productivity

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// RATES - Pricing a day and a minute
// =============================================================================

// Rates prices absences and delays for one period.
//
// Holidays stay in WorkingDays: they are paid days, so they are part of
// the denominator that prices a day.
type Rates struct {
	MonthlySalary   generic.Money
	WorkingDays     int
	StandardMinutes generic.Minutes
	PerDay          generic.Money
	PerMinute       generic.Money

	// Empty is set when the period has no working days at all.
	Empty bool
}

// ComputeRates rounds both rates to paise before they are used, so every
// deduction is reproducible from the displayed rates.
func ComputeRates(salary generic.Money, period generic.Period, shift ShiftConfig) Rates {
	r := Rates{
		MonthlySalary:   salary,
		WorkingDays:     period.WorkingDays(),
		StandardMinutes: shift.StandardMinutes(),
	}
	if r.WorkingDays <= 0 {
		r.Empty = true
		r.PerDay = generic.Zero()
		r.PerMinute = generic.Zero()
		return r
	}

	r.PerDay = salary.DivRound(generic.NewMoneyFromInt(int64(r.WorkingDays)), 2)
	if r.StandardMinutes > 0 {
		r.PerMinute = r.PerDay.DivRound(generic.NewMoney(float64(r.StandardMinutes)), 2)
	} else {
		r.PerMinute = generic.Zero()
	}
	return r
}

// Price converts delay minutes into a deduction rounded to paise.
func (r Rates) Price(minutes generic.Minutes) generic.Money {
	if minutes <= 0 {
		return generic.Zero()
	}
	return r.PerMinute.MulMinutes(minutes).Round(2)
}

// dayLedger caps deductions so one day never costs more than a day's pay.
type dayLedger struct {
	perDay   generic.Money
	deducted generic.Money
}

func newDayLedger(perDay generic.Money) *dayLedger {
	return &dayLedger{perDay: perDay, deducted: generic.Zero()}
}

func (l *dayLedger) charge(amount generic.Money) generic.Money {
	remaining := l.perDay.Sub(l.deducted).NonNegative()
	charged := amount.Min(remaining).NonNegative()
	l.deducted = l.deducted.Add(charged)
	return charged
}

func (l *dayLedger) salary() generic.Money {
	return l.perDay.Sub(l.deducted).NonNegative()
}

// percent returns part/whole*100 rounded to two places, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(whole)), 2).
		InexactFloat64()
}
