package generic

import "fmt"

// =============================================================================
// PERIOD - The date range a report is computed for
// =============================================================================

// Period is an inclusive date range [Start, End].
//
// Examples:
//   - Pay month: Sep 1 - Sep 30
//   - Ad-hoc range picked by an admin: Sep 10 - Sep 17
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod parses two ISO dates and rejects ranges that end before they start.
func NewPeriod(from, to string) (Period, error) {
	start, err := ParseDate(from)
	if err != nil {
		return Period{}, fmt.Errorf("%w: from date %q", ErrInvalidPeriod, from)
	}
	end, err := ParseDate(to)
	if err != nil {
		return Period{}, fmt.Errorf("%w: to date %q", ErrInvalidPeriod, to)
	}
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// MonthPeriod returns the full calendar month containing the given date.
func MonthPeriod(date TimePoint) Period {
	return Period{
		Start: StartOfMonth(date.Year(), date.Month()),
		End:   EndOfMonth(date.Year(), date.Month()),
	}
}

func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period, in order, both ends included.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// TotalDays is the number of calendar days in the period.
func (p Period) TotalDays() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// CountSundays counts Sundays in the period.
func (p Period) CountSundays() int {
	n := 0
	for _, d := range p.Days() {
		if d.IsSunday() {
			n++
		}
	}
	return n
}

// WorkingDays is TotalDays minus Sundays. Holidays stay in: a holiday is a
// paid working day for pricing purposes, it only removes the expectation
// of worked minutes.
func (p Period) WorkingDays() int {
	return p.TotalDays() - p.CountSundays()
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PreviousMonth returns the calendar month before the one containing Start.
func (p Period) PreviousMonth() Period {
	return MonthPeriod(StartOfMonth(p.Start.Year(), p.Start.Month()).AddDays(-1))
}
