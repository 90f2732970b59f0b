package productivity

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// DELAY / DEDUCTION CALCULATOR
// =============================================================================
//
// Every session of a day is judged with knowledge of its neighbours. The
// rules are additive; each contributes only when positive:
//
//   orphaned OUT      full window when the day has no working session, else 0
//   auto-generated OUT unworked time (afternoon or full window)
//   late arrival      first session, or a session resuming after lunch
//   permission time   gap to the next session, lunch excluded, allowance first
//
// A return after an OUT inside lunch is typed as a late arrival but draws on
// the same daily allowance as any other gap.
//   early departure   last session only, charged by lunch band
//
// "During lunch" means strictly between lunch start and lunch end.

type DelayDetail struct {
	Type        DelayType       `json:"type"`
	Minutes     generic.Minutes `json:"minutes"`
	Description string          `json:"description"`
}

// Delay is the outcome for one session.
type Delay struct {
	TotalMinutes generic.Minutes `json:"totalMinutes"`
	Details      []DelayDetail   `json:"details,omitempty"`

	// PermissionMinutes is the charged inter-session part of TotalMinutes,
	// including a late return from lunch.
	PermissionMinutes generic.Minutes `json:"permissionMinutes"`
}

func (d *Delay) add(t DelayType, minutes generic.Minutes, description string) {
	if minutes <= 0 {
		return
	}
	d.TotalMinutes += minutes
	d.Details = append(d.Details, DelayDetail{Type: t, Minutes: minutes, Description: description})
}

// HasDelay is true when any rule charged minutes.
func (d Delay) HasDelay() bool { return d.TotalMinutes > 0 }

// CalculateDelays returns one Delay per pair, in the same order.
func CalculateDelays(pairs []SessionPair, policy PolicyConfig) []Delay {
	delays := make([]Delay, len(pairs))
	shift := policy.Shift
	full := shift.StandardMinutes()

	working := workingIndexes(pairs)
	if len(working) == 0 {
		// Only stray OUTs: the day was never started.
		if len(pairs) > 0 {
			delays[0].add(DelayMissingIn, full,
				fmt.Sprintf("OUT at %s without IN, full day unworked", pairs[0].Out.Display))
		}
		return delays
	}

	firstIn := pairs[working[0]].In.Minutes
	firstInLunch := shift.DuringLunch(firstIn)
	firstAfterLunch := shift.StartsBeforeLunch() && firstIn >= shift.LunchEnd
	allowance := policy.PermissionTime

	realSessions := 0
	for _, i := range working {
		if !pairs[i].IsAutoOut {
			realSessions++
		}
	}

	for k, i := range working {
		pair := pairs[i]
		d := &delays[i]

		if pair.IsAutoOut {
			d.add(DelayUnworked, unworkedMinutes(pair, shift, realSessions),
				fmt.Sprintf("No OUT punch after %s", pair.In.Display))
			continue
		}

		if k == 0 {
			lateFirstSession(d, pair, shift)
		} else if prev := pairs[working[k-1]]; !firstInLunch && shift.DuringLunch(prev.Out.Minutes) {
			ref := shift.WorkStart
			if shift.StartsBeforeLunch() {
				ref = shift.LunchEnd
			}
			// time away past lunch is inter-session time and shares the allowance
			if late := (pair.In.Minutes - ref).Positive(); late > 0 {
				absorbed := generic.MinMinutes(allowance, late)
				allowance -= absorbed
				charged := late - absorbed
				d.PermissionMinutes += charged
				d.add(DelayLateArrival, charged,
					fmt.Sprintf("Returned at %s, expected %s (%d mins allowed)",
						pair.In.Display, generic.FormatTime(ref), absorbed.Whole()))
			}
		}

		if k+1 < len(working) {
			next := pairs[working[k+1]]
			if gap := permissionGap(pair, next, shift, firstInLunch || firstAfterLunch); gap > 0 {
				absorbed := generic.MinMinutes(allowance, gap)
				allowance -= absorbed
				charged := gap - absorbed
				d.PermissionMinutes += charged
				d.add(DelayPermission, charged,
					fmt.Sprintf("Away %s - %s (%d mins, %d mins allowed)",
						pair.Out.Display, next.In.Display, gap.Whole(), absorbed.Whole()))
			}
		}

		if k == len(working)-1 && pair.Out.Minutes < shift.WorkEnd {
			d.add(DelayEarlyLeave, earlyDepartureMinutes(pair.Out.Minutes, shift),
				fmt.Sprintf("Left at %s, shift ends %s", pair.Out.Display, generic.FormatTime(shift.WorkEnd)))
		}
	}
	return delays
}

func lateFirstSession(d *Delay, pair SessionPair, shift ShiftConfig) {
	in := pair.In.Minutes
	switch {
	case shift.DuringLunch(in):
		d.add(DelayMissedMorning, shift.LunchStart-shift.WorkStart,
			fmt.Sprintf("Arrived during lunch at %s", pair.In.Display))
	case in >= shift.LunchEnd:
		ref := shift.WorkStart
		if !shift.StartsBeforeLunch() {
			ref = generic.MaxMinutes(shift.WorkStart, shift.LunchEnd)
		}
		late := in - ref - generic.Overlap(ref, in, shift.LunchStart, shift.LunchEnd)
		d.add(DelayLateArrival, late,
			fmt.Sprintf("Arrived at %s, expected %s", pair.In.Display, generic.FormatTime(ref)))
	default:
		d.add(DelayLateArrival, in-shift.WorkStart,
			fmt.Sprintf("Arrived at %s, expected %s", pair.In.Display, generic.FormatTime(shift.WorkStart)))
	}
}

// permissionGap is the unaccounted time between two sessions with lunch free.
func permissionGap(cur, next SessionPair, shift ShiftConfig, dayStartedAtLunch bool) generic.Minutes {
	switch {
	case dayStartedAtLunch:
		return 0
	case next.IsAutoOut && cur.Out.Minutes > shift.LunchEnd:
		return 0
	case shift.DuringLunch(cur.Out.Minutes):
		// the return is priced by the next session's late arrival
		return 0
	}

	out := shift.Clip(cur.Out.Minutes)
	in := shift.Clip(next.In.Minutes)
	if in <= out {
		return 0
	}
	before := (generic.MinMinutes(in, shift.LunchStart) - out).Positive()
	after := (in - generic.MaxMinutes(out, shift.LunchEnd)).Positive()
	return before + after
}

func earlyDepartureMinutes(out generic.Minutes, shift ShiftConfig) generic.Minutes {
	out = generic.MaxMinutes(out, shift.WorkStart)
	switch {
	case out < shift.LunchStart:
		return (shift.LunchStart - out) + (shift.WorkEnd - shift.LunchEnd)
	case out <= shift.LunchEnd:
		return shift.WorkEnd - shift.LunchEnd
	default:
		return shift.WorkEnd - out
	}
}

// unworkedMinutes prices a session that never got an OUT punch.
func unworkedMinutes(pair SessionPair, shift ShiftConfig, realSessions int) generic.Minutes {
	full := shift.StandardMinutes()
	if realSessions == 0 {
		return full
	}
	if pair.In.Minutes >= shift.LunchEnd {
		return shift.WorkEnd - shift.LunchEnd
	}
	return full
}
