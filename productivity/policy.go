package productivity

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// SHIFT CONFIG - A worker's daily schedule ("batch")
// =============================================================================

// ShiftConfig holds the work window and lunch window as minutes since midnight.
type ShiftConfig struct {
	Name          generic.ShiftName
	WorkStart     generic.Minutes
	WorkEnd       generic.Minutes
	LunchStart    generic.Minutes
	LunchEnd      generic.Minutes
	ConsiderLunch bool
}

const DefaultShiftName generic.ShiftName = "default"

// DefaultShift is used when a worker's batch matches no configured shift.
func DefaultShift() ShiftConfig {
	return ShiftConfig{
		Name:       DefaultShiftName,
		WorkStart:  generic.MustTimeToMinutes("09:00"),
		WorkEnd:    generic.MustTimeToMinutes("19:00"),
		LunchStart: generic.MustTimeToMinutes("12:00"),
		LunchEnd:   generic.MustTimeToMinutes("13:00"),
	}
}

// NewShiftConfig parses 24h "HH:MM" boundaries and validates their order.
func NewShiftConfig(name, workStart, workEnd, lunchStart, lunchEnd string, considerLunch bool) (ShiftConfig, error) {
	s := ShiftConfig{Name: generic.ShiftName(name), ConsiderLunch: considerLunch}
	fields := []struct {
		label string
		raw   string
		dst   *generic.Minutes
	}{
		{"work start", workStart, &s.WorkStart},
		{"work end", workEnd, &s.WorkEnd},
		{"lunch start", lunchStart, &s.LunchStart},
		{"lunch end", lunchEnd, &s.LunchEnd},
	}
	for _, f := range fields {
		m, err := generic.TimeToMinutes(f.raw)
		if err != nil {
			return ShiftConfig{}, &generic.ShiftError{Shift: s.Name, Reason: fmt.Sprintf("%s: %v", f.label, err)}
		}
		*f.dst = m
	}
	return s, s.Validate()
}

func (s ShiftConfig) Validate() error {
	if s.WorkEnd <= s.WorkStart {
		return &generic.ShiftError{Shift: s.Name, Reason: "work end must be after work start"}
	}
	if s.LunchEnd < s.LunchStart {
		return &generic.ShiftError{Shift: s.Name, Reason: "lunch end must not be before lunch start"}
	}
	return nil
}

// LunchMinutes is the part of the lunch window inside the work window.
func (s ShiftConfig) LunchMinutes() generic.Minutes {
	return generic.Overlap(s.WorkStart, s.WorkEnd, s.LunchStart, s.LunchEnd)
}

// StandardMinutes is the expected worked time of a full day.
func (s ShiftConfig) StandardMinutes() generic.Minutes {
	return (s.WorkEnd - s.WorkStart) - s.LunchMinutes()
}

// DuringLunch is strict on both ends: punching exactly at a boundary is not "during".
func (s ShiftConfig) DuringLunch(t generic.Minutes) bool {
	return t > s.LunchStart && t < s.LunchEnd
}

// StartsBeforeLunch distinguishes morning shifts from ones that begin after lunch.
func (s ShiftConfig) StartsBeforeLunch() bool {
	return s.WorkStart < s.LunchStart
}

// Clip bounds a clock position to the work window.
func (s ShiftConfig) Clip(t generic.Minutes) generic.Minutes {
	return generic.MaxMinutes(s.WorkStart, generic.MinMinutes(t, s.WorkEnd))
}

// =============================================================================
// BREAK INTERVAL
// =============================================================================

// BreakInterval is a named break outside lunch. When IsBreakConsider is false
// the overlap with a session is removed from worked time.
type BreakInterval struct {
	Name            string
	From            generic.Minutes
	To              generic.Minutes
	IsBreakConsider bool
}

func NewBreakInterval(name, from, to string, considered bool) (BreakInterval, error) {
	f, err := generic.TimeToMinutes(from)
	if err != nil {
		return BreakInterval{}, fmt.Errorf("break %q: %w", name, err)
	}
	t, err := generic.TimeToMinutes(to)
	if err != nil {
		return BreakInterval{}, fmt.Errorf("break %q: %w", name, err)
	}
	if t < f {
		return BreakInterval{}, fmt.Errorf("%w: break %q ends before it starts", generic.ErrInvalidPolicy, name)
	}
	return BreakInterval{Name: name, From: f, To: t, IsBreakConsider: considered}, nil
}

// =============================================================================
// OPTIONS - What the caller passes per calculation
// =============================================================================

type Options struct {
	Batches   []ShiftConfig
	Holidays  []generic.Holiday
	Intervals []BreakInterval

	// ConsiderLunch counts lunch as worked time for every shift.
	ConsiderLunch bool
	// DeductSalary prices delay minutes. Absent days are deducted regardless.
	DeductSalary bool
	// PermissionTimeMinutes is a per-day allowance for gaps between sessions.
	PermissionTimeMinutes generic.Minutes
	// DuplicateScanWindow collapses repeated same-direction scans. Zero disables it.
	DuplicateScanWindow generic.Minutes
}

// DefaultOptions returns options with salary deduction enabled and nothing else configured.
func DefaultOptions() Options {
	return Options{DeductSalary: true}
}

// =============================================================================
// POLICY CONFIG - Options resolved for one worker and one period
// =============================================================================

// PolicyConfig is built once per calculation. Defaults are settled here so
// the day loop never has to look anything up.
type PolicyConfig struct {
	Shift            ShiftConfig
	UsedDefaultShift bool
	Intervals        []BreakInterval
	ConsiderLunch    bool
	DeductSalary     bool
	PermissionTime   generic.Minutes
	DuplicateWindow  generic.Minutes
	Calendar         *generic.HolidayCalendar
}

// NewPolicyConfig resolves the worker's batch to a shift and expands holidays
// inside the period.
func NewPolicyConfig(worker Worker, period generic.Period, opts Options) (PolicyConfig, error) {
	shift, usedDefault := ResolveShift(worker.Batch, opts.Batches)
	if err := shift.Validate(); err != nil {
		return PolicyConfig{}, err
	}
	for _, b := range opts.Intervals {
		if b.To < b.From {
			return PolicyConfig{}, fmt.Errorf("%w: break %q ends before it starts", generic.ErrInvalidPolicy, b.Name)
		}
	}
	if opts.PermissionTimeMinutes < 0 || opts.DuplicateScanWindow < 0 {
		return PolicyConfig{}, fmt.Errorf("%w: negative minute allowance", generic.ErrInvalidPolicy)
	}

	cal, err := generic.NewHolidayCalendar(period, opts.Holidays)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("%w: %v", generic.ErrInvalidPolicy, err)
	}

	return PolicyConfig{
		Shift:            shift,
		UsedDefaultShift: usedDefault,
		Intervals:        opts.Intervals,
		ConsiderLunch:    opts.ConsiderLunch || shift.ConsiderLunch,
		DeductSalary:     opts.DeductSalary,
		PermissionTime:   opts.PermissionTimeMinutes,
		DuplicateWindow:  opts.DuplicateScanWindow,
		Calendar:         cal,
	}, nil
}

// ResolveShift finds the shift named by batch. The second result is true
// when nothing matched and DefaultShift was returned.
func ResolveShift(batch generic.ShiftName, shifts []ShiftConfig) (ShiftConfig, bool) {
	if batch != "" {
		for _, s := range shifts {
			if s.Name == batch {
				return s, false
			}
		}
	}
	return DefaultShift(), true
}
