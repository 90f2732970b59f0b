package productivity

import (
	"fmt"
	"sort"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// DAY RESULT - What one calendar date produced
// =============================================================================

// SessionResult is one evaluated session.
type SessionResult struct {
	Pair      SessionPair
	Work      WorkTime
	Delay     Delay
	Deduction generic.Money
	Status    Status
}

// DayResult is immutable once built; the summary is a fold over these.
type DayResult struct {
	Date     generic.TimePoint
	Status   Status
	Sessions []SessionResult

	WorkedMinutes     generic.Minutes
	DelayMinutes      generic.Minutes
	PermissionMinutes generic.Minutes
	Deduction         generic.Money
	Salary            generic.Money
}

// Present is true for a non-off day with at least one working session.
func (d DayResult) Present() bool {
	return d.Status == StatusPresent || d.Status == StatusAutoOut
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// ReportEntry is one row of the report: one session, or one special day.
type ReportEntry struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	InTime  string `json:"inTime"`
	OutTime string `json:"outTime"`

	WorkedMinutes generic.Minutes `json:"workedMinutes"`
	WorkedTime    string          `json:"workedTime"`

	DelayMinutes generic.Minutes `json:"delayMinutes"`
	DelayTime    string          `json:"delayTime"`
	DelayType    string          `json:"delayType"`
	DelayDetails []DelayDetail   `json:"delayDetails,omitempty"`

	Deduction       generic.Money `json:"deduction"`
	DeductionAmount string        `json:"deductionAmount"`
	DaySalary       generic.Money `json:"daySalary"`
	TotalSalary     string        `json:"totalSalary"`

	Status        Status `json:"status"`
	IsAutoOut     bool   `json:"isAutoOut"`
	IsOrphanedOut bool   `json:"isOrphanedOut"`

	inMinutes generic.Minutes
}

// DayBreakdown is the per-date roll-up of the report rows.
type DayBreakdown struct {
	Date          string          `json:"date"`
	Day           string          `json:"day"`
	Status        Status          `json:"status"`
	Sessions      int             `json:"sessions"`
	WorkedMinutes generic.Minutes `json:"workedMinutes"`
	DelayMinutes  generic.Minutes `json:"delayMinutes"`
	Deduction     generic.Money   `json:"deduction"`
	Salary        generic.Money   `json:"salary"`
}

// Summary is the whole-period aggregate.
type Summary struct {
	WorkerID  generic.WorkerID  `json:"workerId"`
	ShiftName generic.ShiftName `json:"shift"`
	From      string            `json:"from"`
	To        string            `json:"to"`

	TotalDays    int `json:"totalDays"`
	TotalSundays int `json:"totalSundays"`
	Holidays     int `json:"holidays"`
	AbsentDays   int `json:"absentDays"`
	PresentDays  int `json:"presentDays"`
	MissedInDays int `json:"missedInDays"`
	WorkingDays  int `json:"workingDays"`

	StandardMinutes        generic.Minutes `json:"standardMinutes"`
	TotalWorkedMinutes     generic.Minutes `json:"totalWorkedMinutes"`
	TotalDelayMinutes      generic.Minutes `json:"totalDelayMinutes"`
	TotalPermissionMinutes generic.Minutes `json:"totalPermissionMinutes"`

	OriginalSalary           generic.Money `json:"originalSalary"`
	PerDaySalary             generic.Money `json:"perDaySalary"`
	PerMinuteSalary          generic.Money `json:"perMinuteSalary"`
	TotalAbsentDeduction     generic.Money `json:"totalAbsentDeduction"`
	TotalPermissionDeduction generic.Money `json:"totalPermissionDeduction"`
	TotalDeduction           generic.Money `json:"totalDeduction"`
	FinalSalary              generic.Money `json:"finalSalary"`

	AttendanceRate   float64 `json:"attendanceRate"`
	PunctualityScore float64 `json:"punctualityScore"`

	UsedDefaultShift bool `json:"usedDefaultShift"`
	EmptyPeriod      bool `json:"emptyPeriod"`

	punctualDays int
}

// Result is everything one calculation returns.
type Result struct {
	Report         []ReportEntry     `json:"report"`
	Summary        Summary           `json:"summary"`
	DailyBreakdown []DayBreakdown    `json:"dailyBreakdown"`
	FinalSummary   map[string]string `json:"finalSummary"`
}

// =============================================================================
// SUMMARY FOLD
// =============================================================================

func newSummary(worker Worker, period generic.Period, policy PolicyConfig, rates Rates) Summary {
	return Summary{
		WorkerID:                 worker.ID,
		ShiftName:                policy.Shift.Name,
		From:                     period.Start.String(),
		To:                       period.End.String(),
		WorkingDays:              rates.WorkingDays,
		StandardMinutes:          rates.StandardMinutes,
		OriginalSalary:           worker.Salary,
		PerDaySalary:             rates.PerDay,
		PerMinuteSalary:          rates.PerMinute,
		TotalAbsentDeduction:     generic.Zero(),
		TotalPermissionDeduction: generic.Zero(),
		TotalDeduction:           generic.Zero(),
		FinalSalary:              generic.Zero(),
		UsedDefaultShift:         policy.UsedDefaultShift,
		EmptyPeriod:              rates.Empty,
	}
}

// foldDay adds one day to the running summary and returns the new value.
func foldDay(s Summary, d DayResult) Summary {
	s.TotalDays++
	s.TotalWorkedMinutes += d.WorkedMinutes

	switch d.Status {
	case StatusSunday:
		s.TotalSundays++
	case StatusHoliday:
		s.Holidays++
	case StatusAbsent:
		s.AbsentDays++
		s.TotalAbsentDeduction = s.TotalAbsentDeduction.Add(d.Deduction)
	case StatusPresent, StatusAutoOut:
		s.PresentDays++
		if d.DelayMinutes <= 0 {
			s.punctualDays++
		}
		s = addDelays(s, d)
	case StatusMissedIn:
		s.MissedInDays++
		s = addDelays(s, d)
	}
	return s
}

func addDelays(s Summary, d DayResult) Summary {
	s.TotalDelayMinutes += d.DelayMinutes
	s.TotalPermissionMinutes += d.PermissionMinutes
	s.TotalPermissionDeduction = s.TotalPermissionDeduction.Add(d.Deduction)
	return s
}

// finish derives the totals that depend on every day having been folded.
func (s Summary) finish() Summary {
	s.TotalDeduction = s.TotalAbsentDeduction.Add(s.TotalPermissionDeduction)
	s.FinalSalary = s.OriginalSalary.Sub(s.TotalDeduction).NonNegative()
	s.AttendanceRate = percent(s.PresentDays, s.WorkingDays-s.Holidays)
	s.PunctualityScore = percent(s.punctualDays, s.PresentDays)
	return s
}

// Summarize folds a day sequence into a Summary.
func Summarize(worker Worker, period generic.Period, policy PolicyConfig, rates Rates, days []DayResult) Summary {
	s := newSummary(worker, period, policy, rates)
	for _, d := range days {
		s = foldDay(s, d)
	}
	return s.finish()
}

// =============================================================================
// REPORT ROWS
// =============================================================================

// BuildReport turns day results into sorted rows and a per-date breakdown.
func BuildReport(days []DayResult) ([]ReportEntry, []DayBreakdown) {
	var rows []ReportEntry
	breakdown := make([]DayBreakdown, 0, len(days))

	for _, d := range days {
		weekday := d.Date.Weekday().String()
		breakdown = append(breakdown, DayBreakdown{
			Date:          d.Date.String(),
			Day:           weekday,
			Status:        d.Status,
			Sessions:      len(d.Sessions),
			WorkedMinutes: d.WorkedMinutes,
			DelayMinutes:  d.DelayMinutes,
			Deduction:     d.Deduction,
			Salary:        d.Salary,
		})

		if len(d.Sessions) == 0 {
			rows = append(rows, ReportEntry{
				Date:            d.Date.String(),
				Day:             weekday,
				InTime:          "-",
				OutTime:         "-",
				WorkedTime:      generic.FormatMinutes(0),
				DelayTime:       generic.FormatMinutes(0),
				DelayType:       d.Status.String(),
				Deduction:       d.Deduction,
				DeductionAmount: generic.FormatCurrency(d.Deduction),
				DaySalary:       d.Salary,
				TotalSalary:     generic.FormatCurrency(d.Salary),
				Status:          d.Status,
			})
			continue
		}

		for _, sr := range d.Sessions {
			inTime := sr.Pair.In.Display
			if sr.Pair.IsOrphanedOut {
				inTime = "-"
			}
			rows = append(rows, ReportEntry{
				Date:            d.Date.String(),
				Day:             weekday,
				InTime:          inTime,
				OutTime:         sr.Pair.Out.Display,
				WorkedMinutes:   sr.Work.FinalMinutes,
				WorkedTime:      generic.FormatMinutes(sr.Work.FinalMinutes),
				DelayMinutes:    sr.Delay.TotalMinutes,
				DelayTime:       generic.FormatMinutes(sr.Delay.TotalMinutes),
				DelayType:       describeDelay(sr.Delay),
				DelayDetails:    sr.Delay.Details,
				Deduction:       sr.Deduction,
				DeductionAmount: generic.FormatCurrency(sr.Deduction),
				DaySalary:       d.Salary,
				TotalSalary:     generic.FormatCurrency(d.Salary),
				Status:          sr.Status,
				IsAutoOut:       sr.Pair.IsAutoOut,
				IsOrphanedOut:   sr.Pair.IsOrphanedOut,
				inMinutes:       sr.Pair.In.Minutes,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].inMinutes < rows[j].inMinutes
	})
	return rows, breakdown
}

func describeDelay(d Delay) string {
	if len(d.Details) == 0 {
		return "On Time"
	}
	out := ""
	for i, det := range d.Details {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%s)", det.Type, generic.FormatMinutes(det.Minutes))
	}
	return out
}

// FinalSummary renders the summary as display strings keyed by label.
func FinalSummary(s Summary) map[string]string {
	worked := s.TotalWorkedMinutes.Whole()
	return map[string]string{
		"Shift":                string(s.ShiftName),
		"Period":               s.From + " to " + s.To,
		"Total Days":           fmt.Sprint(s.TotalDays),
		"Sundays":              fmt.Sprint(s.TotalSundays),
		"Holidays":             fmt.Sprint(s.Holidays),
		"Working Days":         fmt.Sprint(s.WorkingDays),
		"Present Days":         fmt.Sprint(s.PresentDays),
		"Absent Days":          fmt.Sprint(s.AbsentDays),
		"Missed-In Days":       fmt.Sprint(s.MissedInDays),
		"Total Worked Time":    fmt.Sprintf("%d hrs %d mins", worked/60, worked%60),
		"Total Delay Time":     generic.FormatMinutes(s.TotalDelayMinutes),
		"Original Salary":      generic.FormatCurrency(s.OriginalSalary),
		"Per Day Salary":       generic.FormatCurrency(s.PerDaySalary),
		"Per Minute Salary":    generic.FormatCurrency(s.PerMinuteSalary),
		"Absent Deduction":     generic.FormatCurrency(s.TotalAbsentDeduction),
		"Permission Deduction": generic.FormatCurrency(s.TotalPermissionDeduction),
		"Total Deduction":      generic.FormatCurrency(s.TotalDeduction),
		"Final Salary":         generic.FormatCurrency(s.FinalSalary),
		"Attendance Rate":      fmt.Sprintf("%.2f%%", s.AttendanceRate),
		"Punctuality Score":    fmt.Sprintf("%.2f%%", s.PunctualityScore),
	}
}
