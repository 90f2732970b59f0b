package productivity

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// CALCULATE - The engine entry point
// =============================================================================

// Calculate computes the productivity report for one worker over
// [fromDate, toDate]. Dates are ISO "YYYY-MM-DD".
//
// A malformed punch time fails the whole calculation with a
// *generic.MalformedRecordError instead of being read as midnight.
func Calculate(worker Worker, records []AttendanceRecord, fromDate, toDate string, opts Options) (Result, error) {
	period, err := generic.NewPeriod(fromDate, toDate)
	if err != nil {
		return Result{}, err
	}
	return CalculatePeriod(worker, records, period, opts)
}

// CalculatePeriod is Calculate for an already parsed period.
func CalculatePeriod(worker Worker, records []AttendanceRecord, period generic.Period, opts Options) (Result, error) {
	if err := period.Validate(); err != nil {
		return Result{}, err
	}
	policy, err := NewPolicyConfig(worker, period, opts)
	if err != nil {
		return Result{}, err
	}
	punches, err := groupPunches(records, period, policy)
	if err != nil {
		return Result{}, err
	}

	rates := ComputeRates(worker.Salary, period, policy.Shift)

	days := make([]DayResult, 0, period.TotalDays())
	for _, date := range period.Days() {
		days = append(days, EvaluateDay(date, punches[date.String()], worker.ID, policy, rates))
	}

	summary := Summarize(worker, period, policy, rates, days)
	report, breakdown := BuildReport(days)
	return Result{
		Report:         report,
		Summary:        summary,
		DailyBreakdown: breakdown,
		FinalSummary:   FinalSummary(summary),
	}, nil
}

// groupPunches parses every record inside the period and buckets it by
// date. Each bucket is sorted and de-duplicated.
func groupPunches(records []AttendanceRecord, period generic.Period, policy PolicyConfig) (map[string][]PunchEvent, error) {
	byDate := make(map[string][]PunchEvent)
	for i, r := range records {
		date, err := generic.ParseDate(r.Date)
		if err != nil {
			return nil, &generic.MalformedRecordError{
				Index: i, Date: r.Date, Time: r.Time,
				Err: fmt.Errorf("%w: date: %v", generic.ErrMalformedTime, err),
			}
		}
		if !period.Contains(date) {
			continue
		}
		p, err := ParsePunch(r)
		if err != nil {
			return nil, &generic.MalformedRecordError{Index: i, Date: r.Date, Time: r.Time, Err: err}
		}
		byDate[date.String()] = append(byDate[date.String()], p)
	}

	for d, ps := range byDate {
		SortPunches(ps)
		byDate[d] = CollapseDuplicateScans(ps, policy.DuplicateWindow)
	}
	return byDate, nil
}

// =============================================================================
// DAY EVALUATION
// =============================================================================

// EvaluateDay classifies one date and prices its sessions. punches must be
// sorted.
func EvaluateDay(date generic.TimePoint, punches []PunchEvent, worker generic.WorkerID, policy PolicyConfig, rates Rates) DayResult {
	day := DayResult{Date: date, Deduction: generic.Zero(), Salary: generic.Zero()}

	switch {
	case date.IsSunday():
		day.Status = StatusSunday
	case policy.Calendar.IsHolidayForWorker(date, worker):
		day.Status = StatusHoliday
		day.Salary = rates.PerDay
	case len(punches) == 0:
		day.Status = StatusAbsent
		day.Deduction = rates.PerDay
		return day
	}

	if len(punches) == 0 {
		return day
	}

	pairs := PairPunches(punches, policy.Shift)
	if day.Status.IsPaidOff() {
		// worked minutes still count, nothing is charged
		for _, p := range pairs {
			sr := SessionResult{Pair: p, Work: CalculateWorkTime(p, policy), Deduction: generic.Zero(), Status: day.Status}
			day.WorkedMinutes += sr.Work.FinalMinutes
			day.Sessions = append(day.Sessions, sr)
		}
		return day
	}

	delays := CalculateDelays(pairs, policy)
	ledger := newDayLedger(rates.PerDay)
	day.Status = dayStatus(pairs)

	for i, p := range pairs {
		sr := SessionResult{
			Pair:      p,
			Work:      CalculateWorkTime(p, policy),
			Delay:     delays[i],
			Deduction: generic.Zero(),
			Status:    sessionStatus(p, day.Status),
		}
		if policy.DeductSalary {
			sr.Deduction = ledger.charge(rates.Price(sr.Delay.TotalMinutes))
		}
		day.WorkedMinutes += sr.Work.FinalMinutes
		day.DelayMinutes += sr.Delay.TotalMinutes
		day.PermissionMinutes += sr.Delay.PermissionMinutes
		day.Sessions = append(day.Sessions, sr)
	}
	day.Deduction = ledger.deducted
	day.Salary = ledger.salary()
	return day
}

// dayStatus classifies a punched regular day from its sessions.
func dayStatus(pairs []SessionPair) Status {
	working := workingIndexes(pairs)
	if len(working) == 0 {
		return StatusMissedIn
	}
	for _, i := range working {
		if !pairs[i].IsAutoOut {
			return StatusPresent
		}
	}
	return StatusAutoOut
}

func sessionStatus(p SessionPair, day Status) Status {
	switch {
	case day == StatusMissedIn:
		return StatusMissedIn
	case p.IsAutoOut:
		return StatusAutoOut
	default:
		return StatusPresent
	}
}
