/*
holiday.go - Holiday calendar with per-worker applicability

PURPOSE:
  A holiday may exist in the company calendar and still not apply to every
  worker (a regional festival, a department outing). Applicability is a
  closed two-case variant:

    AllWorkers                      - everyone is off
    SpecificWorkers{w1, w2, ...}    - only the listed workers are off

  Ids referenced by SpecificWorkers that do not belong to the worker being
  calculated simply do not match; that is never an error.

RECURRENCE:
  A holiday may carry an RFC 5545 recurrence rule ("FREQ=YEARLY" for
  national days, "FREQ=WEEKLY;BYDAY=SA" for alternate-Saturday plants).
  The rule is anchored at the holiday's Date and expanded only inside the
  period being calculated.

SEE ALSO:
  - period.go: Date range walking
  - productivity/calculator.go: Consumes HolidayCalendar per worker
*/
package generic

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// =============================================================================
// AUDIENCE - Who a holiday applies to
// =============================================================================

// Audience is implemented only by AllWorkers and SpecificWorkers.
type Audience interface {
	Includes(worker WorkerID) bool
	Kind() AudienceKind
	sealed()
}

type AudienceKind string

const (
	AudienceAll      AudienceKind = "all"
	AudienceSpecific AudienceKind = "specific"
)

type AllWorkers struct{}

func (AllWorkers) Includes(WorkerID) bool { return true }
func (AllWorkers) Kind() AudienceKind     { return AudienceAll }
func (AllWorkers) sealed()                {}

type SpecificWorkers struct {
	workers map[WorkerID]struct{}
}

func NewSpecificWorkers(ids ...WorkerID) SpecificWorkers {
	set := make(map[WorkerID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return SpecificWorkers{workers: set}
}

func (s SpecificWorkers) Includes(worker WorkerID) bool {
	_, ok := s.workers[worker]
	return ok
}

func (SpecificWorkers) Kind() AudienceKind { return AudienceSpecific }
func (SpecificWorkers) sealed()            {}

// Workers returns the member ids in no particular order.
func (s SpecificWorkers) Workers() []WorkerID {
	ids := make([]WorkerID, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	return ids
}

// NewAudience builds an Audience from its stored form ("all" | "specific" + ids).
func NewAudience(kind string, workers []WorkerID) (Audience, error) {
	switch AudienceKind(kind) {
	case AudienceAll, "":
		return AllWorkers{}, nil
	case AudienceSpecific:
		return NewSpecificWorkers(workers...), nil
	default:
		return nil, fmt.Errorf("unknown holiday audience %q", kind)
	}
}

// =============================================================================
// HOLIDAY
// =============================================================================

type Holiday struct {
	ID          string
	Date        TimePoint
	Description string
	Audience    Audience

	// Recurrence is an optional RRULE body, e.g. "FREQ=YEARLY".
	Recurrence string
}

// AppliesTo reports whether the holiday covers the given worker.
func (h Holiday) AppliesTo(worker WorkerID) bool {
	if h.Audience == nil {
		return true
	}
	return h.Audience.Includes(worker)
}

// Occurrences returns the holiday's dates inside the period.
func (h Holiday) Occurrences(p Period) ([]TimePoint, error) {
	if h.Recurrence == "" {
		if p.Contains(h.Date) {
			return []TimePoint{h.Date}, nil
		}
		return nil, nil
	}

	opt, err := rrule.StrToROption(h.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("holiday %s: invalid recurrence %q: %w", h.ID, h.Recurrence, err)
	}
	opt.Dtstart = h.Date.normalize()

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
	}

	instances := rule.Between(p.Start.normalize(), p.End.normalize().Add(24*time.Hour-time.Nanosecond), true)
	dates := make([]TimePoint, 0, len(instances))
	for _, t := range instances {
		dates = append(dates, DateOf(t))
	}
	return dates, nil
}

// =============================================================================
// HOLIDAY CALENDAR - Resolved for one worker over one period
// =============================================================================

// HolidayCalendar answers "is this date a holiday for this worker?" for a
// single period. Build it once per calculation.
type HolidayCalendar struct {
	period Period
	dates  map[string][]Holiday
}

// NewHolidayCalendar expands every holiday inside the period.
func NewHolidayCalendar(p Period, holidays []Holiday) (*HolidayCalendar, error) {
	cal := &HolidayCalendar{period: p, dates: make(map[string][]Holiday)}
	for _, h := range holidays {
		occurrences, err := h.Occurrences(p)
		if err != nil {
			return nil, err
		}
		for _, d := range occurrences {
			cal.dates[d.String()] = append(cal.dates[d.String()], h)
		}
	}
	return cal, nil
}

// IsHolidayForWorker matches by calendar date, then by audience.
func (c *HolidayCalendar) IsHolidayForWorker(date TimePoint, worker WorkerID) bool {
	_, ok := c.HolidayFor(date, worker)
	return ok
}

// HolidayFor returns the first holiday on that date that applies to the worker.
func (c *HolidayCalendar) HolidayFor(date TimePoint, worker WorkerID) (Holiday, bool) {
	for _, h := range c.dates[date.String()] {
		if h.AppliesTo(worker) {
			return h, true
		}
	}
	return Holiday{}, false
}

// CountHolidaysForWorker counts distinct non-Sunday dates in the period
// that are holidays for the worker. Sundays are already off.
func (c *HolidayCalendar) CountHolidaysForWorker(worker WorkerID) int {
	n := 0
	for _, d := range c.period.Days() {
		if !d.IsSunday() && c.IsHolidayForWorker(d, worker) {
			n++
		}
	}
	return n
}
