package productivity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// generalShift is 09:00-19:00 with lunch 13:00-14:00 (540 standard minutes).
func generalShift(t *testing.T) productivity.ShiftConfig {
	t.Helper()
	s, err := productivity.NewShiftConfig("general", "09:00", "19:00", "13:00", "14:00", false)
	require.NoError(t, err)
	return s
}

func policyFor(t *testing.T, shift productivity.ShiftConfig) productivity.PolicyConfig {
	t.Helper()
	return productivity.PolicyConfig{Shift: shift, DeductSalary: true}
}

func in(clock string) productivity.AttendanceRecord {
	return productivity.AttendanceRecord{Time: clock, Presence: true, Date: "2025-09-02"}
}

func out(clock string) productivity.AttendanceRecord {
	return productivity.AttendanceRecord{Time: clock, Presence: false, Date: "2025-09-02"}
}

func punches(t *testing.T, records ...productivity.AttendanceRecord) []productivity.PunchEvent {
	t.Helper()
	ps := make([]productivity.PunchEvent, 0, len(records))
	for _, r := range records {
		p, err := productivity.ParsePunch(r)
		require.NoError(t, err)
		ps = append(ps, p)
	}
	productivity.SortPunches(ps)
	return ps
}

func pairsOf(t *testing.T, shift productivity.ShiftConfig, records ...productivity.AttendanceRecord) []productivity.SessionPair {
	t.Helper()
	return productivity.PairPunches(punches(t, records...), shift)
}

func mins(clock string) generic.Minutes { return generic.MustTimeToMinutes(clock) }

// =============================================================================
// PAIRING
// =============================================================================

func TestPairPunches_SimpleSession(t *testing.T) {
	shift := generalShift(t)

	pairs := pairsOf(t, shift, in("09:15:00 AM"), out("07:00:00 PM"))

	require.Len(t, pairs, 1)
	assert.Equal(t, mins("09:15"), pairs[0].In.Minutes)
	assert.Equal(t, mins("19:00"), pairs[0].Out.Minutes)
	assert.False(t, pairs[0].IsAutoOut)
	assert.False(t, pairs[0].IsOrphanedOut)
}

func TestPairPunches_OrphanedOutAndTrailingIn(t *testing.T) {
	// GIVEN: A stray OUT before work, a normal session, then an IN that never closes
	// WHEN: Pairing
	// THEN: Pseudo IN at work start, normal pair, auto OUT at work end

	shift := generalShift(t)

	pairs := pairsOf(t, shift,
		out("08:00:00 AM"),
		in("09:00:00 AM"), out("01:00:00 PM"),
		in("02:00:00 PM"),
	)

	require.Len(t, pairs, 3)

	assert.True(t, pairs[0].IsOrphanedOut)
	assert.True(t, pairs[0].In.Synthetic)
	assert.Equal(t, shift.WorkStart, pairs[0].In.Minutes)
	assert.Equal(t, mins("08:00"), pairs[0].Out.Minutes)

	assert.False(t, pairs[1].IsAutoOut)
	assert.Equal(t, mins("13:00"), pairs[1].Out.Minutes)

	assert.True(t, pairs[2].IsAutoOut)
	assert.True(t, pairs[2].Out.Synthetic)
	assert.Equal(t, shift.WorkEnd, pairs[2].Out.Minutes)
}

func TestPairPunches_ConsecutiveIns(t *testing.T) {
	shift := generalShift(t)

	pairs := pairsOf(t, shift, in("09:00:00 AM"), in("10:00:00 AM"), out("07:00:00 PM"))

	require.Len(t, pairs, 2)
	assert.True(t, pairs[0].IsAutoOut, "first IN is followed by another IN")
	assert.False(t, pairs[1].IsAutoOut)
	assert.Equal(t, mins("10:00"), pairs[1].In.Minutes)
}

func TestPairPunches_AutoGeneratedOutRecord(t *testing.T) {
	// GIVEN: The scanner service wrote an automatic OUT at 18:30
	// THEN: The pair keeps that time but is flagged as auto-out

	shift := generalShift(t)
	auto := out("06:30:00 PM")
	auto.IsAutoGenerated = true

	pairs := pairsOf(t, shift, in("09:00:00 AM"), auto)

	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].IsAutoOut)
	assert.False(t, pairs[0].Out.Synthetic)
	assert.Equal(t, mins("18:30"), pairs[0].Out.Minutes)
}

func TestPairPunches_SortsBeforePairing(t *testing.T) {
	shift := generalShift(t)

	pairs := pairsOf(t, shift, out("07:00:00 PM"), in("09:00:00 AM"))

	require.Len(t, pairs, 1)
	assert.False(t, pairs[0].IsOrphanedOut)
}

func TestCollapseDuplicateScans(t *testing.T) {
	// GIVEN: Double taps at the door in both directions
	// WHEN: Collapsing with a 2 minute window
	// THEN: First IN and last OUT of each run survive

	ps := punches(t,
		in("09:00:00 AM"), in("09:01:00 AM"),
		out("07:00:00 PM"), out("07:01:30 PM"),
	)

	collapsed := productivity.CollapseDuplicateScans(ps, 2)

	require.Len(t, collapsed, 2)
	assert.Equal(t, mins("09:00"), collapsed[0].Minutes)
	assert.Equal(t, mins("19:01:30"), collapsed[1].Minutes)
}

func TestCollapseDuplicateScans_DisabledByDefault(t *testing.T) {
	ps := punches(t, in("09:00:00 AM"), in("09:01:00 AM"))

	assert.Len(t, productivity.CollapseDuplicateScans(ps, 0), 2)
}

// =============================================================================
// WORKING TIME
// =============================================================================

func TestWorkTime_FullDayExcludesLunch(t *testing.T) {
	// GIVEN: IN exactly at work start, OUT exactly at work end
	// THEN: Worked = window minus lunch, one lunch deduction recorded

	shift := generalShift(t)
	pairs := pairsOf(t, shift, in("09:00:00 AM"), out("07:00:00 PM"))

	wt := productivity.CalculateWorkTime(pairs[0], policyFor(t, shift))

	assert.Equal(t, generic.Minutes(600), wt.RawMinutes)
	assert.Equal(t, generic.Minutes(540), wt.FinalMinutes)
	require.Len(t, wt.Deductions, 1)
	assert.Equal(t, productivity.DeductionLunch, wt.Deductions[0].Type)
	assert.Equal(t, generic.Minutes(60), wt.Deductions[0].Minutes)
}

func TestWorkTime_ClipsToWorkWindow(t *testing.T) {
	shift := generalShift(t)
	pairs := pairsOf(t, shift, in("08:00:00 AM"), out("08:00:00 PM"))

	wt := productivity.CalculateWorkTime(pairs[0], policyFor(t, shift))

	assert.Equal(t, generic.Minutes(600), wt.RawMinutes)
	assert.Equal(t, generic.Minutes(540), wt.FinalMinutes)
}

func TestWorkTime_ConsiderLunch(t *testing.T) {
	shift := generalShift(t)
	policy := policyFor(t, shift)
	policy.ConsiderLunch = true
	pairs := pairsOf(t, shift, in("09:00:00 AM"), out("07:00:00 PM"))

	wt := productivity.CalculateWorkTime(pairs[0], policy)

	assert.Equal(t, generic.Minutes(600), wt.FinalMinutes)
	assert.Empty(t, wt.Deductions)
}

func TestWorkTime_Breaks(t *testing.T) {
	shift := generalShift(t)
	pairs := pairsOf(t, shift, in("09:00:00 AM"), out("07:00:00 PM"))

	tests := []struct {
		name     string
		from, to string
		consider bool
		want     generic.Minutes
	}{
		{"unpaid tea break", "16:00", "16:15", false, 525},
		{"paid tea break", "16:00", "16:15", true, 540},
		{"break overlapping lunch counts once", "13:30", "14:30", false, 510},
		{"break outside session", "20:00", "20:15", false, 540},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := productivity.NewBreakInterval("tea", tt.from, tt.to, tt.consider)
			require.NoError(t, err)
			policy := policyFor(t, shift)
			policy.Intervals = []productivity.BreakInterval{b}

			wt := productivity.CalculateWorkTime(pairs[0], policy)

			assert.Equal(t, tt.want, wt.FinalMinutes)
		})
	}
}

func TestWorkTime_OrphanedOutIsZero(t *testing.T) {
	shift := generalShift(t)
	pairs := pairsOf(t, shift, out("06:00:00 PM"))

	wt := productivity.CalculateWorkTime(pairs[0], policyFor(t, shift))

	assert.Zero(t, wt.RawMinutes)
	assert.Zero(t, wt.FinalMinutes)
}

// =============================================================================
// SHIFT CONFIG
// =============================================================================

func TestShiftConfig_Validation(t *testing.T) {
	_, err := productivity.NewShiftConfig("bad", "19:00", "09:00", "13:00", "14:00", false)
	assert.ErrorIs(t, err, generic.ErrInvalidShift)

	_, err = productivity.NewShiftConfig("bad", "9am", "19:00", "13:00", "14:00", false)
	assert.ErrorIs(t, err, generic.ErrInvalidShift)

	s, err := productivity.NewShiftConfig("general", "09:00", "19:00", "13:00", "14:00", false)
	require.NoError(t, err)
	assert.Equal(t, generic.Minutes(540), s.StandardMinutes())
	assert.True(t, s.DuringLunch(mins("13:30")))
	assert.False(t, s.DuringLunch(mins("13:00")), "lunch boundaries are not during lunch")
	assert.False(t, s.DuringLunch(mins("14:00")))
}

func TestResolveShift_FallsBackToDefault(t *testing.T) {
	general := generalShift(t)

	s, usedDefault := productivity.ResolveShift("general", []productivity.ShiftConfig{general})
	assert.False(t, usedDefault)
	assert.Equal(t, general, s)

	s, usedDefault = productivity.ResolveShift("night", []productivity.ShiftConfig{general})
	assert.True(t, usedDefault)
	assert.Equal(t, productivity.DefaultShiftName, s.Name)
	assert.Equal(t, mins("12:00"), s.LunchStart)
}
