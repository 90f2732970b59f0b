package generic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// CLOCK CODEC - Wall-clock strings <-> minutes since midnight
// =============================================================================
//
// Scanners deliver times as "09:15:00 AM"; shifts are configured as 24h
// "09:00". Both end up as Minutes since midnight so the engine can do plain
// arithmetic. Seconds survive as a fraction of a minute.

// TimeToMinutes parses a 24h "HH:MM" or "HH:MM:SS" string.
func TimeToMinutes(s string) (Minutes, error) {
	h, m, sec, err := splitClock(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Input: s, Reason: err.Error()}
	}
	if h > 23 {
		return 0, &ParseError{Input: s, Reason: "hour out of range"}
	}
	return clockMinutes(h, m, sec), nil
}

// MustTimeToMinutes is TimeToMinutes for literals known to be valid.
func MustTimeToMinutes(s string) Minutes {
	m, err := TimeToMinutes(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MinutesToTime formats minutes since midnight as "HH:MM:SS".
func MinutesToTime(m Minutes) string {
	total := int(math.Round(float64(m) * 60))
	total = ((total % 86400) + 86400) % 86400
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// ParseAttendanceTime parses a scanner time. Both "HH:MM[:SS] AM|PM" and
// 24h "HH:MM[:SS]" are accepted; the result is in [0, 1440).
func ParseAttendanceTime(s string) (Minutes, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return 0, &ParseError{Input: s, Reason: "empty time"}
	}

	meridiem := ""
	switch {
	case strings.HasSuffix(raw, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(raw, "PM"):
		meridiem = "PM"
	}
	if meridiem == "" {
		m, err := TimeToMinutes(raw)
		if perr, ok := err.(*ParseError); ok {
			perr.Input = s
		}
		return m, err
	}

	h, m, sec, err := splitClock(strings.TrimSpace(strings.TrimSuffix(raw, meridiem)))
	if err != nil {
		return 0, &ParseError{Input: s, Reason: err.Error()}
	}
	if h < 1 || h > 12 {
		return 0, &ParseError{Input: s, Reason: "hour out of range for 12-hour clock"}
	}
	if h == 12 {
		h = 0
	}
	if meridiem == "PM" {
		h += 12
	}
	return clockMinutes(h, m, sec), nil
}

// TolerantParseAttendanceTime never fails: malformed input maps to midnight.
// Only display code may use it; the engine rejects malformed punches.
func TolerantParseAttendanceTime(s string) Minutes {
	m, err := ParseAttendanceTime(s)
	if err != nil {
		return 0
	}
	return m
}

// FormatTime renders minutes since midnight as "HH:MM AM|PM". Seconds are dropped.
func FormatTime(m Minutes) string {
	total := int(math.Floor(float64(m)))
	total = ((total % 1440) + 1440) % 1440
	h, min := total/60, total%60

	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h = h % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, min, meridiem)
}

// FormatCurrency renders an amount as "₹X.XX".
func FormatCurrency(m Money) string {
	return "₹" + m.Value.StringFixed(2)
}

// FormatMinutes renders a duration as "N mins".
func FormatMinutes(m Minutes) string {
	return fmt.Sprintf("%d mins", m.Whole())
}

func splitClock(s string) (h, m, sec int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("expected HH:MM or HH:MM:SS")
	}
	if h, err = strconv.Atoi(parts[0]); err != nil || h < 0 {
		return 0, 0, 0, fmt.Errorf("invalid hour %q", parts[0])
	}
	if m, err = strconv.Atoi(parts[1]); err != nil || m < 0 || m > 59 {
		return 0, 0, 0, fmt.Errorf("invalid minute %q", parts[1])
	}
	if len(parts) == 3 {
		if sec, err = strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, 0, 0, fmt.Errorf("invalid second %q", parts[2])
		}
	}
	return h, m, sec, nil
}

func clockMinutes(h, m, sec int) Minutes {
	return Minutes(h*60+m) + Minutes(sec)/60
}
