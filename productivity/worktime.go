package productivity

import (
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// WORKING-TIME CALCULATOR
// =============================================================================

type DeductionType string

const (
	DeductionLunch DeductionType = "lunch"
	DeductionBreak DeductionType = "break"
)

// TimeDeduction records one exclusion removed from a session's worked time.
type TimeDeduction struct {
	Type    DeductionType   `json:"type"`
	Minutes generic.Minutes `json:"minutes"`
	Reason  string          `json:"reason"`
}

// WorkTime is the worked time of one session. RawMinutes is the session
// clipped to the work window; FinalMinutes has lunch and breaks removed.
type WorkTime struct {
	RawMinutes   generic.Minutes `json:"rawMinutes"`
	FinalMinutes generic.Minutes `json:"finalMinutes"`
	Deductions   []TimeDeduction `json:"deductions,omitempty"`
}

// CalculateWorkTime computes worked minutes for a single session.
func CalculateWorkTime(pair SessionPair, policy PolicyConfig) WorkTime {
	if pair.IsOrphanedOut {
		return WorkTime{}
	}

	shift := policy.Shift
	start := shift.Clip(pair.In.Minutes)
	end := shift.Clip(pair.Out.Minutes)
	if end <= start {
		return WorkTime{}
	}

	wt := WorkTime{RawMinutes: end - start}
	excluded := generic.Minutes(0)

	excludeLunch := !policy.ConsiderLunch
	if excludeLunch {
		if lunch := generic.Overlap(start, end, shift.LunchStart, shift.LunchEnd); lunch > 0 {
			wt.Deductions = append(wt.Deductions, TimeDeduction{
				Type:    DeductionLunch,
				Minutes: lunch,
				Reason:  "Lunch " + generic.FormatTime(shift.LunchStart) + " - " + generic.FormatTime(shift.LunchEnd),
			})
			excluded += lunch
		}
	}

	for _, b := range policy.Intervals {
		if b.IsBreakConsider {
			continue
		}
		from := generic.MaxMinutes(start, b.From)
		to := generic.MinMinutes(end, b.To)
		overlap := (to - from).Positive()
		if excludeLunch {
			// lunch minutes were already taken out once
			overlap -= generic.Overlap(from, to, shift.LunchStart, shift.LunchEnd)
		}
		if overlap <= 0 {
			continue
		}
		wt.Deductions = append(wt.Deductions, TimeDeduction{
			Type:    DeductionBreak,
			Minutes: overlap,
			Reason:  b.Name,
		})
		excluded += overlap
	}

	wt.FinalMinutes = (wt.RawMinutes - excluded).Positive()
	return wt
}
