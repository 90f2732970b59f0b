// Package productivity implements the attendance productivity and payroll
// engine on top of the generic clock, calendar and money primitives.
//
// Calculate is a pure function: it reads no clock, performs no I/O and keeps
// no state between calls, so one call per worker may run concurrently.
package productivity

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// INPUTS
// =============================================================================

// Worker is the person a report is computed for. Batch names the shift the
// worker is assigned to.
type Worker struct {
	ID     generic.WorkerID  `json:"id"`
	Name   string            `json:"name"`
	Salary generic.Money     `json:"salary"`
	Batch  generic.ShiftName `json:"batch"`
}

// AttendanceRecord is one raw scan as delivered by the record store.
// Presence true is an IN scan, false an OUT scan.
type AttendanceRecord struct {
	Time            string `json:"time"`
	Presence        bool   `json:"presence"`
	Date            string `json:"date"`
	IsAutoGenerated bool   `json:"isAutoGenerated,omitempty"`
}

// =============================================================================
// SESSIONS
// =============================================================================

// PunchEvent is a parsed scan, or a synthesized one when Synthetic is set.
type PunchEvent struct {
	Minutes   generic.Minutes
	Display   string
	Record    AttendanceRecord
	Synthetic bool
}

func (p PunchEvent) IsIn() bool { return p.Record.Presence }

// SessionPair is one reconstructed IN -> OUT interval.
type SessionPair struct {
	In            PunchEvent
	Out           PunchEvent
	IsAutoOut     bool
	IsOrphanedOut bool
}

// IsWorking is false only for the pseudo session built around an orphaned OUT.
func (p SessionPair) IsWorking() bool { return !p.IsOrphanedOut }

// =============================================================================
// STATUS - Closed set of day and row classifications
// =============================================================================

type Status int

const (
	StatusPresent Status = iota
	StatusAbsent
	StatusAutoOut
	StatusSunday
	StatusHoliday
	StatusMissedIn
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusAutoOut:
		return "Auto-Out"
	case StatusSunday:
		return "Sunday"
	case StatusHoliday:
		return "Holiday"
	case StatusMissedIn:
		return "Missed-In"
	default:
		return "Unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusPresent, StatusAbsent, StatusAutoOut, StatusSunday, StatusHoliday, StatusMissedIn} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// IsPaidOff reports whether the day is off by calendar rather than by absence.
func (s Status) IsPaidOff() bool {
	return s == StatusSunday || s == StatusHoliday
}

// =============================================================================
// DELAY TYPES
// =============================================================================

type DelayType string

const (
	DelayMissingIn     DelayType = "Missing IN"
	DelayLateArrival   DelayType = "Late Arrival"
	DelayMissedMorning DelayType = "Missed Morning Work"
	DelayEarlyLeave    DelayType = "Early Departure"
	DelayPermission    DelayType = "Permission Time"
	DelayUnworked      DelayType = "Unworked Time"
)
