package productivity

import (
	"sort"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// PUNCH PAIRER - One day's scans -> ordered IN/OUT sessions
// =============================================================================

// ParsePunch parses a record's time. Malformed times are returned as errors;
// the caller decides whether that fails the calculation.
func ParsePunch(r AttendanceRecord) (PunchEvent, error) {
	m, err := generic.ParseAttendanceTime(r.Time)
	if err != nil {
		return PunchEvent{}, err
	}
	return PunchEvent{Minutes: m, Display: generic.FormatTime(m), Record: r}, nil
}

// SortPunches orders a day's punches by time. Equal times keep input order.
func SortPunches(punches []PunchEvent) {
	sort.SliceStable(punches, func(i, j int) bool {
		return punches[i].Minutes < punches[j].Minutes
	})
}

// CollapseDuplicateScans drops repeated same-direction scans that fall
// within window minutes of each other. The first IN and the last OUT of
// each run survive. Input must be sorted.
func CollapseDuplicateScans(punches []PunchEvent, window generic.Minutes) []PunchEvent {
	if window <= 0 || len(punches) < 2 {
		return punches
	}
	out := make([]PunchEvent, 0, len(punches))
	for _, p := range punches {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if prev.IsIn() == p.IsIn() && p.Minutes-prev.Minutes <= window {
				if !p.IsIn() {
					out[n-1] = p
				}
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// PairPunches walks sorted punches left to right:
//
//   - an OUT with no IN before it gets a pseudo IN at work start (orphaned)
//   - an IN followed by an OUT is a normal session
//   - an IN followed by an auto-generated OUT is an auto-out session
//   - an IN followed by nothing or by another IN gets an OUT at work end
func PairPunches(punches []PunchEvent, shift ShiftConfig) []SessionPair {
	var pairs []SessionPair
	for i := 0; i < len(punches); {
		cur := punches[i]

		if !cur.IsIn() {
			pairs = append(pairs, SessionPair{
				In:            synthesize(shift.WorkStart, true),
				Out:           cur,
				IsOrphanedOut: true,
			})
			i++
			continue
		}

		if i+1 < len(punches) && !punches[i+1].IsIn() {
			next := punches[i+1]
			pairs = append(pairs, SessionPair{
				In:        cur,
				Out:       next,
				IsAutoOut: next.Record.IsAutoGenerated,
			})
			i += 2
			continue
		}

		pairs = append(pairs, SessionPair{
			In:        cur,
			Out:       synthesize(shift.WorkEnd, false),
			IsAutoOut: true,
		})
		i++
	}
	return pairs
}

func synthesize(at generic.Minutes, presence bool) PunchEvent {
	return PunchEvent{
		Minutes:   at,
		Display:   generic.FormatTime(at),
		Record:    AttendanceRecord{Time: generic.FormatTime(at), Presence: presence, IsAutoGenerated: true},
		Synthetic: true,
	}
}

// workingIndexes lists the positions of pairs that are not orphaned OUTs.
func workingIndexes(pairs []SessionPair) []int {
	idx := make([]int, 0, len(pairs))
	for i, p := range pairs {
		if p.IsWorking() {
			idx = append(idx, i)
		}
	}
	return idx
}
