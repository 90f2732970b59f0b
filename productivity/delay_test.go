package productivity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

func totalDelay(delays []productivity.Delay) generic.Minutes {
	var total generic.Minutes
	for _, d := range delays {
		total += d.TotalMinutes
	}
	return total
}

func delayTypes(d productivity.Delay) []productivity.DelayType {
	var types []productivity.DelayType
	for _, det := range d.Details {
		types = append(types, det.Type)
	}
	return types
}

// =============================================================================
// SINGLE SESSION DAYS
// =============================================================================

func TestDelays_SingleSession(t *testing.T) {
	shift := generalShift(t)

	tests := []struct {
		name    string
		records []productivity.AttendanceRecord
		want    generic.Minutes
		types   []productivity.DelayType
	}{
		{
			name:    "clean day",
			records: []productivity.AttendanceRecord{in("09:00:00 AM"), out("07:00:00 PM")},
			want:    0,
		},
		{
			name:    "late arrival",
			records: []productivity.AttendanceRecord{in("09:15:00 AM"), out("07:00:00 PM")},
			want:    15,
			types:   []productivity.DelayType{productivity.DelayLateArrival},
		},
		{
			name:    "arrived during lunch",
			records: []productivity.AttendanceRecord{in("01:30:00 PM"), out("07:00:00 PM")},
			want:    240,
			types:   []productivity.DelayType{productivity.DelayMissedMorning},
		},
		{
			name:    "arrived after lunch, lunch not charged",
			records: []productivity.AttendanceRecord{in("03:00:00 PM"), out("07:00:00 PM")},
			want:    300,
			types:   []productivity.DelayType{productivity.DelayLateArrival},
		},
		{
			name:    "left before lunch",
			records: []productivity.AttendanceRecord{in("09:00:00 AM"), out("12:00:00 PM")},
			want:    360,
			types:   []productivity.DelayType{productivity.DelayEarlyLeave},
		},
		{
			name:    "left during lunch",
			records: []productivity.AttendanceRecord{in("09:00:00 AM"), out("01:30:00 PM")},
			want:    300,
			types:   []productivity.DelayType{productivity.DelayEarlyLeave},
		},
		{
			name:    "left in the afternoon",
			records: []productivity.AttendanceRecord{in("09:00:00 AM"), out("05:00:00 PM")},
			want:    120,
			types:   []productivity.DelayType{productivity.DelayEarlyLeave},
		},
		{
			name:    "late and early",
			records: []productivity.AttendanceRecord{in("09:10:00 AM"), out("06:50:00 PM")},
			want:    20,
			types:   []productivity.DelayType{productivity.DelayLateArrival, productivity.DelayEarlyLeave},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := pairsOf(t, shift, tt.records...)

			delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

			require.Len(t, delays, 1)
			assert.Equal(t, tt.want, delays[0].TotalMinutes)
			assert.Equal(t, tt.types, delayTypes(delays[0]))
		})
	}
}

func TestDelays_WorkedPlusDelayCoversTheDay(t *testing.T) {
	// GIVEN: Single-session days ending before work end
	// THEN: Worked minutes + charged minutes = standard minutes

	shift := generalShift(t)
	policy := policyFor(t, shift)

	for _, leave := range []string{"10:00:00 AM", "12:00:00 PM", "01:30:00 PM", "04:45:00 PM"} {
		pairs := pairsOf(t, shift, in("09:00:00 AM"), out(leave))

		wt := productivity.CalculateWorkTime(pairs[0], policy)
		delays := productivity.CalculateDelays(pairs, policy)

		assert.Equal(t, shift.StandardMinutes(), wt.FinalMinutes+delays[0].TotalMinutes, "leaving at %s", leave)
	}
}

// =============================================================================
// MULTI SESSION DAYS
// =============================================================================

func TestDelays_PermissionGapBeforeLunch(t *testing.T) {
	shift := generalShift(t)
	pairs := pairsOf(t, shift,
		in("09:00:00 AM"), out("11:00:00 AM"),
		in("11:30:00 AM"), out("07:00:00 PM"),
	)

	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

	assert.Equal(t, generic.Minutes(30), delays[0].TotalMinutes)
	assert.Equal(t, generic.Minutes(30), delays[0].PermissionMinutes)
	assert.Equal(t, []productivity.DelayType{productivity.DelayPermission}, delayTypes(delays[0]))
	assert.Zero(t, delays[1].TotalMinutes)
}

func TestDelays_PermissionGapSpanningLunch(t *testing.T) {
	// GIVEN: Away 12:00-15:00 across a 13:00-14:00 lunch
	// THEN: Only the hour before and the hour after lunch are charged

	shift := generalShift(t)
	pairs := pairsOf(t, shift,
		in("09:00:00 AM"), out("12:00:00 PM"),
		in("03:00:00 PM"), out("07:00:00 PM"),
	)

	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

	assert.Equal(t, generic.Minutes(120), delays[0].TotalMinutes)
	assert.Zero(t, delays[1].TotalMinutes, "return after a non-lunch OUT is not late")
}

func TestDelays_PermissionAllowanceAbsorbsGap(t *testing.T) {
	shift := generalShift(t)
	policy := policyFor(t, shift)
	policy.PermissionTime = 20
	pairs := pairsOf(t, shift,
		in("09:00:00 AM"), out("10:00:00 AM"),
		in("10:15:00 AM"), out("11:00:00 AM"),
		in("11:15:00 AM"), out("07:00:00 PM"),
	)

	delays := productivity.CalculateDelays(pairs, policy)

	assert.Zero(t, delays[0].TotalMinutes, "first 15 mins fit in the allowance")
	assert.Equal(t, generic.Minutes(10), delays[1].TotalMinutes, "5 mins of allowance left")
	assert.Equal(t, generic.Minutes(10), totalDelay(delays))
}

func TestDelays_OutDuringLunchThenLateReturn(t *testing.T) {
	// GIVEN: OUT inside lunch, back 30 mins after lunch end
	// THEN: No gap charge on the first session, late return on the second

	shift := generalShift(t)
	pairs := pairsOf(t, shift,
		in("09:00:00 AM"), out("01:30:00 PM"),
		in("02:30:00 PM"), out("07:00:00 PM"),
	)

	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

	assert.Zero(t, delays[0].TotalMinutes)
	assert.Equal(t, generic.Minutes(30), delays[1].TotalMinutes)
	assert.Equal(t, []productivity.DelayType{productivity.DelayLateArrival}, delayTypes(delays[1]))
}

func TestDelays_LunchReturnDrawsOnAllowance(t *testing.T) {
	// GIVEN: A 30 min allowance and 30 mins away outside lunch
	// WHEN: The time away starts before lunch or inside it
	// THEN: Both days are free, the allowance is shared with later gaps

	shift := generalShift(t)
	policy := policyFor(t, shift)
	policy.PermissionTime = 30

	morning := productivity.CalculateDelays(pairsOf(t, shift,
		in("09:00:00 AM"), out("10:00:00 AM"),
		in("10:30:00 AM"), out("07:00:00 PM"),
	), policy)
	lunch := productivity.CalculateDelays(pairsOf(t, shift,
		in("09:00:00 AM"), out("01:30:00 PM"),
		in("02:30:00 PM"), out("07:00:00 PM"),
	), policy)

	assert.Zero(t, totalDelay(morning))
	assert.Zero(t, totalDelay(lunch))

	shared := productivity.CalculateDelays(pairsOf(t, shift,
		in("09:00:00 AM"), out("01:30:00 PM"),
		in("02:20:00 PM"), out("04:00:00 PM"),
		in("04:30:00 PM"), out("07:00:00 PM"),
	), policy)

	assert.Zero(t, shared[0].TotalMinutes)
	assert.Equal(t, shared[1].TotalMinutes, shared[1].PermissionMinutes)
	assert.Equal(t, generic.Minutes(20), shared[1].TotalMinutes, "20 late + 30 away, 30 allowed")
	assert.Equal(t, generic.Minutes(20), totalDelay(shared))
}

func TestDelays_FirstSessionDuringLunchSuppressesLaterCharges(t *testing.T) {
	shift := generalShift(t)
	pairs := pairsOf(t, shift,
		in("01:15:00 PM"), out("01:45:00 PM"),
		in("03:00:00 PM"), out("07:00:00 PM"),
	)

	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

	assert.Equal(t, generic.Minutes(240), delays[0].TotalMinutes, "missed morning only")
	assert.Zero(t, delays[1].TotalMinutes)
}

func TestDelays_OrphanedOutWithOtherSessions(t *testing.T) {
	// GIVEN: A stray OUT from last night's session plus a full day
	// THEN: The stray OUT costs nothing

	shift := generalShift(t)
	pairs := pairsOf(t, shift,
		out("02:00:00 AM"),
		in("09:00:00 AM"), out("07:00:00 PM"),
	)

	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

	require.Len(t, delays, 2)
	assert.Zero(t, totalDelay(delays))
}

func TestDelays_OrphanedOutOnly(t *testing.T) {
	shift := generalShift(t)
	pairs := pairsOf(t, shift, out("06:00:00 PM"))

	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

	assert.Equal(t, shift.StandardMinutes(), delays[0].TotalMinutes)
	assert.Equal(t, []productivity.DelayType{productivity.DelayMissingIn}, delayTypes(delays[0]))
}

func TestDelays_AutoOut(t *testing.T) {
	shift := generalShift(t)

	t.Run("only session", func(t *testing.T) {
		pairs := pairsOf(t, shift, in("09:00:00 AM"))

		delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

		assert.Equal(t, generic.Minutes(540), delays[0].TotalMinutes)
		assert.Equal(t, []productivity.DelayType{productivity.DelayUnworked}, delayTypes(delays[0]))
	})

	t.Run("afternoon session after a real one", func(t *testing.T) {
		pairs := pairsOf(t, shift,
			in("09:00:00 AM"), out("01:00:00 PM"),
			in("03:00:00 PM"),
		)

		delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

		require.Len(t, delays, 2)
		assert.Equal(t, generic.Minutes(60), delays[0].TotalMinutes, "gap after lunch")
		assert.Equal(t, generic.Minutes(300), delays[1].TotalMinutes, "afternoon unworked")
	})

	t.Run("gap skipped when morning session ends after lunch", func(t *testing.T) {
		pairs := pairsOf(t, shift,
			in("09:00:00 AM"), out("03:00:00 PM"),
			in("04:00:00 PM"),
		)

		delays := productivity.CalculateDelays(pairs, policyFor(t, shift))

		assert.Zero(t, delays[0].TotalMinutes)
		assert.Equal(t, generic.Minutes(300), delays[1].TotalMinutes)
	})
}

func TestDelays_AfternoonShift(t *testing.T) {
	// GIVEN: A 14:00-22:00 shift whose lunch is 18:00-18:30
	shift, err := productivity.NewShiftConfig("evening", "14:00", "22:00", "18:00", "18:30", false)
	require.NoError(t, err)

	pairs := pairsOf(t, shift, in("02:10:00 PM"), out("10:00:00 PM"))
	delays := productivity.CalculateDelays(pairs, policyFor(t, shift))
	assert.Equal(t, generic.Minutes(10), delays[0].TotalMinutes)

	pairs = pairsOf(t, shift, in("07:00:00 PM"), out("10:00:00 PM"))
	delays = productivity.CalculateDelays(pairs, policyFor(t, shift))
	assert.Equal(t, generic.Minutes(270), delays[0].TotalMinutes, "late from 14:00 minus lunch")
}
